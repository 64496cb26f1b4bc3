package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"path2prevention/internal/pkg/jwtutil"
	"path2prevention/internal/transport/http/response"
)

const ContextUsernameKey = "username"

// AdminJWT guards maintenance routes. When enabled is false every request
// passes, which keeps local setups without an admin password usable.
func AdminJWT(secret string, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}
		if claims.Role != jwtutil.RoleAdmin {
			response.Error(c, http.StatusForbidden, "admin role required")
			c.Abort()
			return
		}

		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}
