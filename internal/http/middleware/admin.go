package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"hahu_backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Admin allows only profiles whose username is in usernames. JWT must run first.
func Admin(store repository.Store, usernames []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		allowed[strings.ToLower(u)] = struct{}{}
	}

	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		profile, err := store.Profiles().GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if _, ok := allowed[strings.ToLower(profile.Username)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

const PaymentTokenHeader = "X-Payment-Token"

// PaymentToken checks the shared secret sent by the payment collaborator.
// Without a configured secret every callback is refused.
func PaymentToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "payment callback not configured"})
			return
		}
		got := c.GetHeader(PaymentTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid payment token"})
			return
		}
		c.Next()
	}
}
