package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer of HTTP server spans.
const TracerName = "github.com/kart-io/onboarding-assistant/pkg/infra/middleware"

// DefaultTracingSkipPaths are probe and scrape endpoints left untraced.
var DefaultTracingSkipPaths = []string{"/healthz", "/livez", "/readyz", "/metrics"}

// Tracing returns a middleware that continues the caller's W3C trace
// context and wraps each request in a server span named "<method> <route>".
// Responses with status >= 500 mark the span as failed.
func Tracing(skipPaths ...string) gin.HandlerFunc {
	if len(skipPaths) == 0 {
		skipPaths = DefaultTracingSkipPaths
	}
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := otel.Tracer(TracerName).Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPRoute(route),
				semconv.HTTPTarget(c.Request.URL.Path),
			),
		)
		defer span.End()

		if rid := GetRequestID(ctx); rid != "" {
			span.SetAttributes(attribute.String("http.request_id", rid))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if status >= http.StatusInternalServerError {
			msg := http.StatusText(status)
			if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
				msg = strings.Join(errs.Errors(), "; ")
			}
			span.SetStatus(codes.Error, msg)
		}
	}
}
