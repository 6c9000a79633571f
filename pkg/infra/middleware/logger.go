package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/pkg/infra/tracing"
)

// fieldsPool is a sync.Pool for reusing fields slices to reduce heap allocations.
var fieldsPool = sync.Pool{
	New: func() any {
		s := make([]any, 0, 20)
		return &s
	},
}

func acquireFields() *[]any {
	return fieldsPool.Get().(*[]any)
}

func releaseFields(fields *[]any) {
	*fields = (*fields)[:0]
	fieldsPool.Put(fields)
}

// LoggerConfig defines the config for Logger middleware.
type LoggerConfig struct {
	// SkipPaths is a list of paths to skip logging.
	SkipPaths []string
}

// DefaultLoggerConfig is the default Logger middleware config.
var DefaultLoggerConfig = LoggerConfig{
	SkipPaths: []string{"/healthz", "/livez", "/readyz", "/metrics"},
}

// Logger returns a middleware that logs HTTP requests.
func Logger() gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig)
}

// LoggerWithConfig returns a Logger middleware with custom config.
func LoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipPaths[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := acquireFields()
		defer releaseFields(fields)

		status := c.Writer.Status()
		*fields = append(*fields,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"remote_addr", c.ClientIP(),
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
		)
		if requestID := GetRequestID(c.Request.Context()); requestID != "" {
			*fields = append(*fields, "request_id", requestID)
		}
		if traceID := tracing.TraceID(c.Request.Context()); traceID != "" {
			*fields = append(*fields, "trace_id", traceID)
		}
		if len(c.Errors) > 0 {
			*fields = append(*fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			logger.Errorw("HTTP Request", (*fields)...)
		case status >= 400:
			logger.Warnw("HTTP Request", (*fields)...)
		default:
			logger.Infow("HTTP Request", (*fields)...)
		}
	}
}
