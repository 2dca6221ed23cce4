package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const merchantIDHeader = "X-Merchant-ID"

// AuthMiddleware requires the merchant identity header on every request and
// stows it in the context for the controllers. Upstream the API gateway has
// already authenticated the merchant; this service only needs the identity.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantID := strings.TrimSpace(c.GetHeader(merchantIDHeader))
		if merchantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": merchantIDHeader + " header is required"})
			c.Abort()
			return
		}
		c.Set("merchant_id", merchantID)
		c.Next()
	}
}
