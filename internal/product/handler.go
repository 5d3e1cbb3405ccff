package product

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Product, int64, error)
	Get(ctx context.Context, userID, id int64) (*Product, error)
	Create(ctx context.Context, userID int64, dto ProductDTO) (*Product, error)
	Update(ctx context.Context, userID, id int64, dto UpdateProductDTO) (*Product, error)
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

// List handles GET /products
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	supplierID, err := h.QueryInt64(r, "supplier_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	page := h.Pagination(r)

	products, total, err := h.Service.List(r.Context(), ListFilter{
		UserID:     internal.UserIDFromContext(r.Context()),
		SupplierID: supplierID,
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProductsResponse{Products: products, Total: total, Limit: page.Limit, Offset: page.Offset})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.Get(r.Context(), internal.UserIDFromContext(r.Context()), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.Create(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.Update(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
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
