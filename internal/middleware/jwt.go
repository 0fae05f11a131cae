package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/inklet/inklet/internal/service"
	"github.com/inklet/inklet/pkg/response"
)

// JWTAuth gates the API group on a Bearer token issued by the API login
// endpoint. The token subject is the user id.
func JWTAuth(secret string, auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || claims.Subject == "" {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		u, err := auth.GetUser(c.Request.Context(), claims.Subject)
		if err != nil {
			response.Unauthorized(c, "unknown user")
			c.Abort()
			return
		}
		SetUser(c, u)
		c.Next()
	}
}
