package supplier

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Supplier, int64, error)
	Get(ctx context.Context, userID, id int64) (*Supplier, error)
	Create(ctx context.Context, userID int64, dto SupplierDTO) (*Supplier, error)
	Update(ctx context.Context, userID, id int64, dto UpdateSupplierDTO) (*Supplier, error)
	Delete(ctx context.Context, userID, id int64) error
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

// List handles GET /suppliers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := h.Pagination(r)
	suppliers, total, err := h.Service.List(r.Context(), ListFilter{
		UserID: internal.UserIDFromContext(r.Context()),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SuppliersResponse{Suppliers: suppliers, Total: total, Limit: page.Limit, Offset: page.Offset})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	s, err := h.Service.Get(r.Context(), internal.UserIDFromContext(r.Context()), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto SupplierDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	s, err := h.Service.Create(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateSupplierDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	s, err := h.Service.Update(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), internal.UserIDFromContext(r.Context()), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
