package router

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"beaconmarket/controllers"

	"github.com/gin-gonic/gin"
)

// Adminizer blocks access unless the request carries the admin token, in
// the X-Admin-Token header or as a bearer token. An empty token disables
// the admin routes.
func Adminizer(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			controllers.RespondError(c, "admin access disabled", http.StatusForbidden)
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Admin-Token")
		if provided == "" {
			provided = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if provided == "" {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			controllers.RespondError(c, "admin required", http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
