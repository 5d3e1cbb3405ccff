package credit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	Balance(ctx context.Context, userID int64, limit int) (*BalanceResponse, error)
	RunPrompt(ctx context.Context, userID, promptID int64, dto RunPromptDTO) (*RunResponse, error)
	Adjust(ctx context.Context, actorID, userID int64, dto AdjustDTO) (*AdjustResponse, error)
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

// Balance handles GET /credits
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	page := h.Pagination(r)
	resp, err := h.Service.Balance(r.Context(), internal.UserIDFromContext(r.Context()), page.Limit)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// RunPrompt handles POST /ai/prompts/{id}/run
func (h *Handler) RunPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	var dto RunPromptDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleError(w, r, err)
			return
		}
	}

	resp, err := h.Service.RunPrompt(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Adjust handles PUT /admin/users/{id}/credits
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	var dto AdjustDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	resp, err := h.Service.Adjust(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
