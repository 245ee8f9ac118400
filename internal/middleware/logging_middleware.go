package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
	loggerKey       = "logger"
)

// Probe endpoints are polled constantly; their completions log at debug.
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggingMiddleware tags each request with an id and logs its completion.
// Failures the storefront API caused (502/504) log as warnings.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		log := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Set(loggerKey, log)

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"route":       c.FullPath(),
			"status_code": statusCode,
			"latency_ms":  time.Since(startTime).Milliseconds(),
			"session":     GetToken(c) != "",
			"ip":          c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		const msg = "Request completed"
		switch {
		case statusCode == http.StatusBadGateway || statusCode == http.StatusGatewayTimeout:
			fields["upstream_failure"] = true
			log.Warn(msg, fields)
		case statusCode >= http.StatusInternalServerError:
			log.Error(msg, nil, fields)
		case statusCode >= http.StatusBadRequest:
			log.Warn(msg, fields)
		case quietRoutes[c.FullPath()]:
			log.Debug(msg, fields)
		default:
			log.Info(msg, fields)
		}
	}
}

// GetLoggerFromContext returns the request-scoped logger, or the global one
// outside LoggingMiddleware.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if v, exists := c.Get(loggerKey); exists {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
