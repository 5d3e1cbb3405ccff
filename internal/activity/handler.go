package activity

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Entry, int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// List handles GET /admin/activity
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.QueryInt64(r, "user_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	page := h.Pagination(r)

	entries, total, err := h.Service.List(r.Context(), ListFilter{
		UserID: userID,
		Action: strings.TrimSpace(r.URL.Query().Get("action")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Entries: entries, Total: total, Limit: page.Limit, Offset: page.Offset})
}
