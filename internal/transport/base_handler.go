package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.L()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain message error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

// HandleError renders AppErrors with their own status and hides everything
// else behind a generic 500.
func (h *BaseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			logger.From(r.Context()).ErrorContext(r.Context(), "request failed",
				"path", r.URL.Path, "code", appErr.Code, "error", appErr.Error())
		}
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}

	logger.From(r.Context()).ErrorContext(r.Context(), "unhandled error",
		"method", r.Method, "path", r.URL.Path, "error", err)
	h.WriteJSON(w, http.StatusInternalServerError, internal.Response{
		Error: internal.InternalErrorFor(r.Context()),
	})
}

// DecodeJSON reads a bounded JSON body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationError("request body is empty", internal.ErrCodeInvalidRequest)
		}
		return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidRequest).WithCause(err)
	}
	return nil
}

// IDParam parses a positive integer route parameter.
func (h *BaseHandler) IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, "must be a positive integer", internal.ErrCodeInvalidID)
	}
	return id, nil
}

// QueryInt64 parses an optional integer query parameter.
func (h *BaseHandler) QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, internal.NewValidationFieldError(name, "must be an integer", internal.ErrCodeInvalidRequest)
	}
	return &v, nil
}

type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Pagination reads limit/offset with a default page of 20 and a cap of 100.
func (h *BaseHandler) Pagination(r *http.Request) Page {
	p := Page{Limit: 20}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			p.Limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			p.Offset = o
		}
	}

	return p
}
