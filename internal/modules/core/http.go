package core

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CorrelationIDHeader                = "Correlation-Id"
	CorrelationIDContextKey ContextKey = "correlation_id"
)

func CorrelationID(ctx context.Context) string {
	correlationID, _ := ctx.Value(CorrelationIDContextKey).(string)
	return correlationID
}

func CorrelationIDHTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := context.WithValue(r.Context(), CorrelationIDContextKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLoggerMiddleware attaches a logger carrying the correlation id to the
// request context and writes one access log line per request.
func RequestLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestLogger := logger.With(
				zap.String("correlation_id", CorrelationID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(WithLogger(r.Context(), requestLogger)))

			requestLogger.Info(
				"http request",
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", recorder.status),
				zap.Int("response_size", recorder.size),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				LogError(
					r.Context(),
					"panic recovered",
					zap.Any("error", err),
					zap.ByteString("stack", debug.Stack()),
				)
				WriteResponse(w, r, http.StatusInternalServerError, NewCommandError(http.StatusInternalServerError, nil))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}
