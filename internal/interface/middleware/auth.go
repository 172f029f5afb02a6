package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sailorswift/sailor-swift-api/pkg/helpers"
	"github.com/sailorswift/sailor-swift-api/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth validates the Authorization bearer token and injects the subject
// user id into the Gin context. A missing scheme is 403, a token that
// fails verification is 401.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error[any](c, http.StatusForbidden, "Not authenticated", nil)
			c.Abort()
			return
		}
		sub, err := jwt.Verify(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "Could not validate credentials", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, sub)
		c.Next()
	}
}
