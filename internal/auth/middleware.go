package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware validates the bearer token and stores the operator's claims
// in the request context.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := s.jwtHandler.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("operator", claims.Operator)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose token role does not satisfy the
// required one. It must run after Middleware.
func RequireRole(required Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "no role found",
			})
			c.Abort()
			return
		}

		if !roleAllows(role.(string), required) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "insufficient role",
				"required": string(required),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
