package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the authenticated user identity, set by the
// upstream auth layer. This service trusts it and does no token
// validation of its own.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// RequireUser rejects requests that arrive without an authenticated
// user identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User identity required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
