package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ziwei/internal/account"
	"ziwei/internal/prefs"
	"ziwei/internal/reading"
	"ziwei/internal/session"
	"ziwei/pkg/logger"
)

const (
	ctxSessionKey = "session_id"
	sessionTTL    = 30 * 24 * time.Hour
)

// SessionMiddleware makes sure every request carries a session id, issuing
// a new cookie when the visitor has none or an unparseable one.
func SessionMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(session.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, id, int(sessionTTL.Seconds()), "/", "", secure, true)
		}
		c.Set(ctxSessionKey, id)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionKey)
}

// Owner is who prefs and readings belong to: the signed-in account, else
// the anonymous session.
func Owner(c *gin.Context) string {
	if claims := account.MustGetClaims(c); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return SessionID(c)
}

// AdoptOnSignIn moves what the visitor saved anonymously onto the account
// they just signed in to.
func AdoptOnSignIn(p *prefs.Repo, r *reading.Repo) func(c *gin.Context, userID string) {
	return func(c *gin.Context, userID string) {
		from := SessionID(c)
		if from == "" || from == userID {
			return
		}
		log := logger.Named("web").With("session", from, "user", userID)
		ctx := c.Request.Context()
		if p != nil {
			if err := p.Adopt(ctx, from, userID); err != nil {
				log.Warnw("adopt prefs failed", "err", err)
			}
		}
		if r != nil {
			if err := r.Reassign(ctx, from, userID); err != nil {
				log.Warnw("reassign readings failed", "err", err)
			}
		}
	}
}
