package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dangmn/chatline/internal/auth"
	"github.com/dangmn/chatline/internal/metrics"
)

const (
	ctxUserID = "user_id"
	ctxToken  = "token"
)

// AuthRequired validates the bearer token and stashes the caller identity
// on the request context.
func AuthRequired(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			metrics.AuthFailures.WithLabelValues("missing_header").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		uid, err := tokens.Verify(token)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("bad_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		c.Set(ctxUserID, string(uid))
		c.Set(ctxToken, token)
		c.Next()
	}
}
