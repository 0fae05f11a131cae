package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginRequired redirects anonymous requests to the login page before the
// handler body runs.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
