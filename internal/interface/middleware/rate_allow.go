package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AdityaShome/Secondhome-sub002/pkg/response"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowRoles bypasses the limiter for authenticated callers holding a role.
// It must run after Auth to see the role.
func AllowRoles(roles ...string) AllowFunc {
	return func(c *gin.Context) bool {
		role := c.GetString("userRole")
		for _, r := range roles {
			if role != "" && r == role {
				return true
			}
		}
		return false
	}
}

// PrivateOnly answers 404 to anyone AllowPrivateIP would not let through.
func PrivateOnly() gin.HandlerFunc {
	allow := AllowPrivateIP()
	return func(c *gin.Context) {
		if !allow(c) {
			response.Error[any](c, http.StatusNotFound, "not found", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
