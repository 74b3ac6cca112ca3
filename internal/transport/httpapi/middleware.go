package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mleng/courtmate/internal/auth"
	"github.com/mleng/courtmate/internal/observability"
)

// userIDKey is the gin context key holding the authenticated user id.
const userIDKey = "user_id"

// callerID returns the authenticated user id for the current request.
func callerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requireAuth validates the bearer token and stores the user id in the context.
func requireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": errorBody{Code: "unauthorized", Message: auth.ErrMissingToken.Error()},
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": errorBody{Code: "unauthorized", Message: auth.ErrInvalidToken.Error()},
			})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": errorBody{Code: "unauthorized", Message: auth.ErrInvalidToken.Error()},
			})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// recordMetrics observes request latency per route and status.
func recordMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.ObserveRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
