package partner

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]*Category, error)
	CreateCategory(ctx context.Context, dto CategoryDTO) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListPartners(ctx context.Context, filter ListFilter) ([]*Partner, int64, error)
	GetPartner(ctx context.Context, id int64, includeInactive bool) (*Partner, error)
	CreatePartner(ctx context.Context, actor Actor, dto PartnerDTO) (*Partner, error)
	UpdatePartner(ctx context.Context, id int64, dto UpdatePartnerDTO) (*Partner, error)
	DeletePartner(ctx context.Context, actor Actor, id int64) error
	AddContact(ctx context.Context, partnerID int64, dto ContactDTO) (*Contact, error)
	RemoveContact(ctx context.Context, partnerID, contactID int64) error
	Review(ctx context.Context, actor Actor, partnerID int64, dto ReviewDTO) (*ReviewResponse, bool, error)
	Comments(ctx context.Context, partnerID int64) ([]*Comment, error)
	AddComment(ctx context.Context, actor Actor, partnerID int64, dto CommentDTO) (*Comment, error)
	LikeComment(ctx context.Context, id int64) (*LikeResponse, error)
	DeleteComment(ctx context.Context, actor Actor, id int64) error
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

func actorFrom(r *http.Request) Actor {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return Actor{ID: internal.UserIDFromContext(r.Context())}
	}
	return Actor{ID: p.ID, CanManage: p.Can(auth.PermPartnersManage)}
}

// ListCategories handles GET /partners/categories. Managers may pass
// ?all=true to include inactive categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := !(actorFrom(r).CanManage && r.URL.Query().Get("all") == "true")
	categories, err := h.Service.ListCategories(r.Context(), activeOnly)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	c, err := h.Service.CreateCategory(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	c, err := h.Service.UpdateCategory(r.Context(), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := h.Service.DeleteCategory(r.Context(), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPartners handles GET /partners. Only active partners are listed
// unless the caller manages partners.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.QueryInt64(r, "category_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	q := r.URL.Query()
	page := h.Pagination(r)

	filter := ListFilter{
		CategoryID: categoryID,
		Search:     strings.TrimSpace(q.Get("search")),
		Status:     StatusFilterActive,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := q.Get("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.HandleError(w, r, internal.NewValidationFieldError("verified", "must be true or false", internal.ErrCodeInvalidRequest))
			return
		}
		filter.Verified = &v
	}
	if actorFrom(r).CanManage {
		filter.Status = q.Get("status")
	}

	partners, total, err := h.Service.ListPartners(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PartnersResponse{Partners: partners, Total: total, Limit: page.Limit, Offset: page.Offset})
}

func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.GetPartner(r.Context(), id, actorFrom(r).CanManage)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var dto PartnerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.CreatePartner(r.Context(), actorFrom(r), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePartner(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdatePartnerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.UpdatePartner(r.Context(), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePartner(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := h.Service.DeletePartner(r.Context(), actorFrom(r), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto ContactDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	c, err := h.Service.AddContact(r.Context(), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	contactID, err := h.IDParam(r, "contactId")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := h.Service.RemoveContact(r.Context(), id, contactID); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Review handles POST /partners/{id}/reviews. It answers 201 for a first
// review and 200 when the caller's earlier review was replaced.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto ReviewDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	resp, created, err := h.Service.Review(r.Context(), actorFrom(r), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.WriteJSON(w, status, resp)
}

func (h *Handler) Comments(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	comments, err := h.Service.Comments(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CommentsResponse{Comments: comments})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto CommentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	c, err := h.Service.AddComment(r.Context(), actorFrom(r), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	resp, err := h.Service.LikeComment(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := h.Service.DeleteComment(r.Context(), actorFrom(r), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
