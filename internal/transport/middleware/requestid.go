package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// TraceID propagates or mints a trace id and scopes the request logger to it.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		ctx := internal.ContextWithTraceID(r.Context(), traceID)
		ctx = logger.With(ctx, "traceID", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
