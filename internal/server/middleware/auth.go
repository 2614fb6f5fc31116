package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kasuboski/openai-gateway/internal/keystore"
	"github.com/kasuboski/openai-gateway/pkg/api"
)

// Auth rejects requests lacking a valid `Authorization: Bearer <key>` header
// before they reach the registry. The key value never appears in logs or
// error bodies.
func Auth(keys keystore.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.UnauthorizedError("Missing Authorization header"))
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.UnauthorizedError("Invalid Authorization header format"))
			return
		}

		if !keys.IsAuthorized(c.Request.Context(), token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.UnauthorizedError("Invalid API key"))
			return
		}

		c.Next()
	}
}
