package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/imiq-project/Dashbot/internal/infrastructure/observability"
)

// SessionHeader carries the conversation session across requests.
const SessionHeader = "X-Session-ID"

// RequestIDHeader echoes the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs HTTP requests with a correlation id and the
// conversation session, when present.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		event := observability.LoggerFromContext(r.Context()).Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", time.Since(start))
		if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
			event = event.Str("session_id", sessionID)
		}
		event.Msg("Request handled")
	})
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *loggingResponseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *loggingResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
