package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/logger"
)

// quietRoutes are health and scrape endpoints left out of the access log
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggerMiddleware writes one access log line per request. It logs the route
// template instead of the raw URL so coordinates and ids in query strings stay
// out of the logs.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if quietRoutes[route] {
			return
		}
		if route == "" {
			route = "unmatched"
		}

		entry := logger.RequestEntry{
			Method:   c.Request.Method,
			Route:    route,
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
		}
		if p, ok := c.Get(PrincipalKey); ok {
			if principal, ok := p.(entities.Principal); ok {
				entry.UserID = principal.UserID.String()
			}
		}
		if last := c.Errors.Last(); last != nil {
			entry.Err = last.Error()
		}
		// request id comes from RequestIDMiddleware via the request context
		logger.LogRequest(c.Request.Context(), entry)
	}
}
