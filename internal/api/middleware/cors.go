package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders  = "Authorization, Content-Type, X-Request-ID"
	corsAllowMethods  = "GET, POST, PUT, OPTIONS"
	corsExposeHeaders = "Content-Disposition, X-Request-ID, X-Archive-Location"
)

// CORS allows the configured front-end origins. A single "*" entry
// allows any origin without credentials, which is meant for local setups.
func CORS(allowOrigins []string) gin.HandlerFunc {
	anyOrigin := false
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Vary", "Origin")
			_, ok := allowed[origin]
			switch {
			case ok:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			case anyOrigin:
				c.Header("Access-Control-Allow-Origin", "*")
			default:
				origin = ""
			}
		}

		if origin != "" {
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
			if c.Request.Method == http.MethodOptions {
				c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
				c.Header("Access-Control-Allow-Methods", corsAllowMethods)
				c.Header("Access-Control-Max-Age", "600")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
