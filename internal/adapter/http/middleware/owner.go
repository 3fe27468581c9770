package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ownerHeader = "X-User-ID"

	// DefaultOwner scopes requests that carry no identity, matching the
	// single-user deployment mode.
	DefaultOwner = "default"
)

// OwnerMiddleware resolves the tenant key for the request. Authentication
// itself happens upstream; by the time a request reaches this service the
// header value is trusted.
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(ownerHeader))
		if owner == "" {
			owner = DefaultOwner
		}
		c.Set("owner", owner)
		c.Next()
	}
}

func GetOwner(c *gin.Context) string {
	if owner, exists := c.Get("owner"); exists {
		if s, ok := owner.(string); ok && s != "" {
			return s
		}
	}
	return DefaultOwner
}
