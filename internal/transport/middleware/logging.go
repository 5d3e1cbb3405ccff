package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

// sensitiveFields are field names that should be filtered from logs
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"cookie",
	"secret",
	"api_key",
	"session",
	"credential",
	"client_secret",
	"stripe-signature",
}

// bodies above this size are logged by length only
const maxLoggedBody = 4 << 10

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lg := logger.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))

		logRequest(lg, r)

		ww := &responseWriter{ResponseWriter: w, body: &bytes.Buffer{}}
		next.ServeHTTP(ww, r)

		logResponse(lg, r, ww, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status and a prefix of the body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.body.Write(b[:room])
	}
	rw.size += len(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// replayBody serves the bytes already read for logging ahead of the rest of
// the request body.
type replayBody struct {
	io.Reader
	io.Closer
}

func logRequest(lg *slog.Logger, r *http.Request) {
	var bodyBytes []byte
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength <= maxLoggedBody {
		// ContentLength is -1 for chunked bodies, so the read stays bounded.
		head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
		r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
		if len(head) <= maxLoggedBody {
			bodyBytes = head
		}
	}

	lg.InfoContext(r.Context(), "incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterSensitiveHeaders(r.Header),
		"body", filterSensitiveBody(bodyBytes),
	)
}

func logResponse(lg *slog.Logger, r *http.Request, rw *responseWriter, duration time.Duration) {
	status := rw.Status()

	level := slog.LevelInfo
	if status >= 400 && status < 500 {
		level = slog.LevelWarn
	} else if status >= 500 {
		level = slog.LevelError
	}

	attrs := []any{
		"status_code", status,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.size,
	}
	if uid := internal.UserIDFromContext(r.Context()); uid != 0 {
		attrs = append(attrs, "user_id", uid)
	}
	if status >= 400 {
		attrs = append(attrs, "body", filterSensitiveBody(rw.body.Bytes()))
	}

	lg.Log(r.Context(), level, "response", attrs...)
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// filterSensitiveHeaders masks sensitive headers
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}
	return filtered
}

// filterSensitiveBody masks sensitive fields in a JSON body
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var jsonData interface{}
	if err := json.Unmarshal(body, &jsonData); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return string(body)
	}

	filteredBytes, err := json.Marshal(filterSensitiveJSON(jsonData))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	return string(filteredBytes)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
			} else {
				filtered[key] = filterSensitiveJSON(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}
