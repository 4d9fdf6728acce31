package web

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ziwei/internal/live"
	"ziwei/internal/session"
)

// Probes serves /health and /ready.
type Probes struct {
	DB       *sql.DB
	Hub      *live.Hub
	Sessions *session.Store
}

func (p *Probes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	rg.GET("/ready", p.ready)
}

func (p *Probes) ready(c *gin.Context) {
	out := gin.H{}
	if p.Hub != nil {
		stats := p.Hub.Stats()
		out["ws_sessions"] = stats.Sessions
		out["ws_clients"] = stats.Sockets
	}
	if p.Sessions != nil {
		out["sessions"] = p.Sessions.Len()
	}

	if p.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := p.DB.PingContext(ctx); err != nil {
			out["status"] = "not_ready"
			out["db_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, out)
			return
		}
		out["db"] = "ok"
	}
	out["status"] = "ready"
	c.JSON(http.StatusOK, out)
}
