package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Logger logs one line per completed request and feeds the request counter.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			defer func() {
				requestID := GetRequestID(r.Context())
				duration := time.Since(start)

				metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(wrapped.status)).Inc()

				logger.Info("request completed",
					slog.String("request_id", requestID),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", wrapped.status),
					slog.Int("bytes", wrapped.bytes),
					slog.Duration("duration", duration),
					slog.String("remote_addr", r.RemoteAddr),
				)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
