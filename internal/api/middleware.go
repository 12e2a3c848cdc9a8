package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"craftmarket/internal/auth"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// AuthMiddleware resolves the caller identity once per request. No token
// means the caller stays anonymous; a malformed or expired token is rejected
// outright rather than silently downgraded.
func AuthMiddleware(signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		claims, err := auth.ParseToken(signingKey, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(string(CtxClaims), claims)
		c.Next()
	}
}

// currentUser returns the resolved caller id, or 0 for anonymous callers.
func currentUser(c *gin.Context) int64 {
	ci, exists := c.Get(string(CtxClaims))
	if !exists {
		return 0
	}
	return ci.(*auth.Claims).UserID
}

// requireUser aborts with 401 when the caller is anonymous.
func requireUser(c *gin.Context) (int64, bool) {
	uid := currentUser(c)
	if uid == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return 0, false
	}
	return uid, true
}

// RequestLogger emits one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
