package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginPolicy список фронтендов, которым разрешены запросы из браузера и WebSocket.
type OriginPolicy struct {
	allowed map[string]struct{}
}

func NewOriginPolicy(origins []string) OriginPolicy {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = struct{}{}
		}
	}
	return OriginPolicy{allowed: allowed}
}

// Allowed сравнивает origin без учёта завершающего слэша.
func (p OriginPolicy) Allowed(origin string) bool {
	_, ok := p.allowed[strings.TrimRight(origin, "/")]
	return ok && origin != ""
}

const (
	corsAllowHeaders  = "Content-Type, Content-Length, Accept, Authorization, Cache-Control, X-Requested-With"
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsExposeHeaders = "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After"
	corsMaxAge        = "600"
)

// CORSMiddleware отвечает на preflight и выставляет заголовки для разрешённых origin.
func CORSMiddleware(policy OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if policy.Allowed(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
