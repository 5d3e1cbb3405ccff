package internal

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	traceIDKey
)

// UserIDFromContext returns the id of the authenticated caller, or zero.
func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	userID, _ := ctx.Value(userIDKey).(int64)
	return userID
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// TraceIDFromContext returns the request trace id, or "" outside a request.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// InternalErrorFor is the generic 500 body, tagged with the request's
// trace id so a report can be matched to the logs.
func InternalErrorFor(ctx context.Context) *AppError {
	appErr := NewInternalError("Internal server error", nil)
	if id := TraceIDFromContext(ctx); id != "" {
		appErr = appErr.WithDetails(map[string]string{"traceId": id})
	}
	return appErr
}
