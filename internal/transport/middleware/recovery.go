package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

// RecoveryMiddleware turns panics into a logged stack trace and a generic 500.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).ErrorContext(r.Context(), "panic recovered",
					"error", rec,
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(internal.Response{
					Error: internal.InternalErrorFor(r.Context()),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
