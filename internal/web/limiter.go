package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per visitor key.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewLimiter allows perMinute requests per visitor with a burst of the same
// size. perMinute <= 0 disables limiting.
func NewLimiter(perMinute int) *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Inf,
		burst:    1,
		now:      time.Now,
	}
	if perMinute > 0 {
		l.limit = rate.Limit(float64(perMinute) / 60.0)
		l.burst = perMinute
	}
	return l
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.seen = l.now()
	return v.lim
}

func (l *Limiter) Allow(key string) bool {
	return l.get(key).AllowN(l.now(), 1)
}

// Prune forgets visitors idle for longer than maxAge.
func (l *Limiter) Prune(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxAge)
	n := 0
	for k, v := range l.visitors {
		if v.seen.Before(cutoff) {
			delete(l.visitors, k)
			n++
		}
	}
	return n
}

// Middleware rejects requests over the visitor's budget with 429. The key is
// the session id, or the client IP before a session exists.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := SessionID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !l.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
