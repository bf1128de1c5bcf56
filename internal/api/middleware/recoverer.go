package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer converts a handler panic into a 500 after logging the stack.
// The response body is JSON to match the rest of the API surface.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID := GetRequestID(r.Context())
					stack := debug.Stack()

					logger.Error("panic recovered",
						slog.String("request_id", requestID),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(stack)),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"internal_error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
