// Package trace assigns request IDs and logs request start/completion
// with a level keyed to the response status.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	applog "duit/internal/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.Logger
}

func NewMiddleware(extractIP func(*http.Request) string, logger *applog.Logger) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    logger.WithComponent(applog.ComponentHTTP),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GenerateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		// Handlers pick this logger up via applog.FromContext so their
		// entries carry the request ID without threading it manually.
		ctx = applog.NewContext(ctx, m.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		m.logger.DebugContext(ctx, "request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		fields := []any{
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP,
			applog.FieldSuccess, rw.statusCode < 400,
		}
		switch {
		case rw.statusCode >= 500:
			m.logger.ErrorContext(ctx, "request completed", fields...)
		case rw.statusCode >= 400:
			m.logger.WarnContext(ctx, "request completed", fields...)
		default:
			m.logger.InfoContext(ctx, "request completed", fields...)
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID creates a unique request ID for tracing.
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from the context, or returns "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ExtractClientIP resolves the client address, honoring proxy headers.
func ExtractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
