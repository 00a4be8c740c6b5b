package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"truthcore-hq/atlas/pkg/telemetry/logging"
	"truthcore-hq/atlas/pkg/truth"
)

// Recovery recovers from handler panics and returns a 500 failure
// envelope. The panic and stack are logged; the client sees only the
// stable INTERNAL code.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic in handler",
						"error", err,
						"request_id", logging.GetRequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					failure := truth.NewFailure(truth.CodeInternal,
						"an internal error occurred")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   failure.Code,
						"message": failure.Message,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
