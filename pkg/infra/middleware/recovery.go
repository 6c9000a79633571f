package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
	"github.com/kart-io/onboarding-assistant/pkg/utils/response"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// OnPanic is called when a panic occurs.
	OnPanic func(c *gin.Context, err any, stack []byte)
}

// Recovery returns a middleware that recovers from panics.
// It converts panics to JSON error responses using the error code system.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(RecoveryConfig{})
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Errorw("Panic recovered",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", r,
					"request_id", GetRequestID(c.Request.Context()),
					"stack", string(stack),
				)
				if config.OnPanic != nil {
					config.OnPanic(c, r, stack)
				}

				response.Fail(c, errors.ErrInternal.WithMessage(fmt.Sprintf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}
