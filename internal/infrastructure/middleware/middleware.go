// internal/infrastructure/middleware/middleware.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/damon-houk/currency-quote/internal/infrastructure/observability"
	"github.com/google/uuid"
)

// Keys for context values
type contextKey string

const (
	requestIDKey contextKey = "request_id"

	// RequestIDHeader carries the request id to the quotation API
	RequestIDHeader = "X-Request-ID"
)

// Middleware decorates an outbound transport
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(r)
func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base with the middlewares, the first one being outermost
func Chain(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		base = middlewares[i](base)
	}
	return base
}

// WithRequestID stores a request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// RequestID adds a request ID to every outbound request, reusing the one in the context
// when present
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			requestID, ok := r.Context().Value(requestIDKey).(string)
			if !ok || requestID == "" {
				requestID = uuid.New().String()
			}

			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, requestID)

			return next.RoundTrip(r)
		})
	}
}

// Tracing propagates the active span in the request headers
func Tracing(tracer observability.Tracer) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			tracer.Inject(r.Context(), r.Header)
			return next.RoundTrip(r)
		})
	}
}

// Logging logs outbound requests and their responses
func Logging(log logger.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			startTime := time.Now()
			requestID := r.Header.Get(RequestIDHeader)

			log.Debug("Request sent", map[string]interface{}{
				"request_id": requestID,
				"method":     r.Method,
				"url":        r.URL.String(),
			})

			resp, err := next.RoundTrip(r)
			duration := time.Since(startTime)

			if err != nil {
				log.Warn("Request failed", map[string]interface{}{
					"request_id":  requestID,
					"method":      r.Method,
					"url":         r.URL.String(),
					"duration_ms": duration.Milliseconds(),
					"error":       err.Error(),
				})
				return nil, err
			}

			log.Debug("Response received", map[string]interface{}{
				"request_id":     requestID,
				"method":         r.Method,
				"url":            r.URL.String(),
				"status":         resp.StatusCode,
				"duration_ms":    duration.Milliseconds(),
				"content_type":   resp.Header.Get("Content-Type"),
				"content_length": resp.ContentLength,
			})

			return resp, nil
		})
	}
}
