package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxClaimsKey = "auth_claims"
	CookieName   = "ziwei_token"
)

// tokenFrom reads a bearer header first, then the sign-in cookie.
func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if v, err := c.Cookie(CookieName); err == nil {
		return v
	}
	return ""
}

func verify(c *gin.Context, tokens TokenService, repo *Repo) (*Claims, bool) {
	raw := tokenFrom(c)
	if raw == "" {
		return nil, false
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	if repo != nil {
		current, err := repo.GetTokenVersion(c.Request.Context(), claims.UserID)
		if err != nil || current != claims.TokenVersion {
			return nil, false
		}
	}
	return claims, true
}

func AuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := verify(c, tokens, repo)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			c.Abort()
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth sets the claims when a valid token is present and lets the
// request through either way.
func OptionalAuth(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := verify(c, tokens, repo); ok {
			c.Set(CtxClaimsKey, claims)
		}
		c.Next()
	}
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
