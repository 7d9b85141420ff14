package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/metrics"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Observe assigns a request ID, attaches a request-scoped logger, recovers
// panics, and records an access log line plus HTTP metrics for every request.
// Register it with Router.Use so the matched route template is known.
func Observe(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logging.WithContext(r.Context(), logger)
			ctx = logging.WithRequestID(ctx, requestID)
			r = r.WithContext(ctx)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			defer func() {
				if rec := recover(); rec != nil {
					panicLogger := logging.FromContext(ctx)
					panicLogger.Error().
						Str("panic", fmt.Sprint(rec)).
						Msg("handler panicked")
					if !wrapped.wroteHeader {
						writeError(wrapped, http.StatusInternalServerError, "Internal server error")
					} else {
						wrapped.statusCode = http.StatusInternalServerError
					}
				}

				route := routeTemplate(r)
				elapsed := time.Since(start)
				metrics.RecordHTTPRequest(r.Method, route, wrapped.statusCode, elapsed.Seconds())

				reqLogger := logging.FromContext(ctx)
				event := reqLogger.Info()
				if wrapped.statusCode >= 500 {
					event = reqLogger.Error()
				}
				event.
					Str("method", r.Method).
					Str("route", route).
					Int("status", wrapped.statusCode).
					Dur("duration", elapsed).
					Msg("request")
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
