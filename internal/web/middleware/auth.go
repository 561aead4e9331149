package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth rejects requests without a valid token and exposes the
// principal as user_id and email in the gin context. Both token forms are
// accepted: a JWT, or a redis session token from /auth/login/session.
func (m *MiddlewareManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")

		userID, email, err := m.auth.ValidateTokenJWT(c, token)
		if err != nil {
			userID, err = m.auth.ValidateTokenSession(c, token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				c.Abort()
				return
			}
		}

		c.Set("user_id", userID)
		c.Set("email", email)

		c.Next()
	}
}
