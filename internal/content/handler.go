package content

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]*Template, error)
	GetTemplate(ctx context.Context, id int64, activeOnly bool) (*Template, error)
	CreateTemplate(ctx context.Context, actorID int64, dto TemplateDTO) (*Template, error)
	UpdateTemplate(ctx context.Context, actorID, id int64, dto UpdateTemplateDTO) (*Template, error)
	DeleteTemplate(ctx context.Context, actorID, id int64) error

	ListMaterials(ctx context.Context, filter MaterialFilter) ([]*Material, error)
	GetMaterial(ctx context.Context, id int64, activeOnly bool) (*Material, error)
	CreateMaterial(ctx context.Context, actorID int64, dto MaterialDTO) (*Material, error)
	UpdateMaterial(ctx context.Context, actorID, id int64, dto UpdateMaterialDTO) (*Material, error)
	DeleteMaterial(ctx context.Context, actorID, id int64) error

	ListPrompts(ctx context.Context, filter PromptFilter) ([]*AIPrompt, error)
	GetPrompt(ctx context.Context, id int64, activeOnly bool) (*AIPrompt, error)
	CreatePrompt(ctx context.Context, actorID int64, dto AIPromptDTO) (*AIPrompt, error)
	UpdatePrompt(ctx context.Context, actorID, id int64, dto UpdateAIPromptDTO) (*AIPrompt, error)
	DeletePrompt(ctx context.Context, actorID, id int64) error

	ListTaxonomy(ctx context.Context, kind Kind, activeOnly bool) ([]*Taxonomy, error)
	CreateTaxonomy(ctx context.Context, actorID int64, kind Kind, dto TaxonomyDTO) (*Taxonomy, error)
	UpdateTaxonomy(ctx context.Context, actorID int64, kind Kind, id int64, dto UpdateTaxonomyDTO) (*Taxonomy, error)
	DeleteTaxonomy(ctx context.Context, actorID int64, kind Kind, id int64) error
}

// Handler serves the public catalog (active items only) and the admin
// consoles, which see every item.
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

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body interface{}, err error) {
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, status, body)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.listTemplates(w, r, true)
}

func (h *Handler) AdminListTemplates(w http.ResponseWriter, r *http.Request) {
	h.listTemplates(w, r, false)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	items, err := h.Service.ListTemplates(r.Context(), TemplateFilter{
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		ActiveOnly: activeOnly,
	})
	h.respond(w, r, http.StatusOK, TemplatesResponse{Templates: items}, err)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	t, err := h.Service.GetTemplate(r.Context(), id, true)
	h.respond(w, r, http.StatusOK, t, err)
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var dto TemplateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	t, err := h.Service.CreateTemplate(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	h.respond(w, r, http.StatusCreated, t, err)
}

func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateTemplateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	t, err := h.Service.UpdateTemplate(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	h.respond(w, r, http.StatusOK, t, err)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Service.DeleteTemplate)
}

// ListMaterials handles GET /materials?material_type_id&software_type_id&category
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	h.listMaterials(w, r, true)
}

func (h *Handler) AdminListMaterials(w http.ResponseWriter, r *http.Request) {
	h.listMaterials(w, r, false)
}

func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	materialTypeID, err := h.QueryInt64(r, "material_type_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	softwareTypeID, err := h.QueryInt64(r, "software_type_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	items, err := h.Service.ListMaterials(r.Context(), MaterialFilter{
		Category:       strings.TrimSpace(r.URL.Query().Get("category")),
		MaterialTypeID: materialTypeID,
		SoftwareTypeID: softwareTypeID,
		ActiveOnly:     activeOnly,
	})
	h.respond(w, r, http.StatusOK, MaterialsResponse{Materials: items}, err)
}

func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	m, err := h.Service.GetMaterial(r.Context(), id, true)
	h.respond(w, r, http.StatusOK, m, err)
}

func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var dto MaterialDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	m, err := h.Service.CreateMaterial(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	h.respond(w, r, http.StatusCreated, m, err)
}

func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateMaterialDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	m, err := h.Service.UpdateMaterial(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	h.respond(w, r, http.StatusOK, m, err)
}

func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Service.DeleteMaterial)
}

func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	h.listPrompts(w, r, true)
}

func (h *Handler) AdminListPrompts(w http.ResponseWriter, r *http.Request) {
	h.listPrompts(w, r, false)
}

func (h *Handler) listPrompts(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	items, err := h.Service.ListPrompts(r.Context(), PromptFilter{
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		ActiveOnly: activeOnly,
	})
	h.respond(w, r, http.StatusOK, PromptsResponse{Prompts: items}, err)
}

func (h *Handler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.GetPrompt(r.Context(), id, true)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var dto AIPromptDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.CreatePrompt(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	h.respond(w, r, http.StatusCreated, p, err)
}

func (h *Handler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateAIPromptDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	p, err := h.Service.UpdatePrompt(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Service.DeletePrompt)
}

// ListTaxonomy serves the active entries of one taxonomy.
func (h *Handler) ListTaxonomy(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.Service.ListTaxonomy(r.Context(), kind, true)
		h.respond(w, r, http.StatusOK, TaxonomiesResponse{Items: items}, err)
	}
}

func (h *Handler) AdminListTaxonomy(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.Service.ListTaxonomy(r.Context(), kind, false)
		h.respond(w, r, http.StatusOK, TaxonomiesResponse{Items: items}, err)
	}
}

func (h *Handler) CreateTaxonomy(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dto TaxonomyDTO
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleError(w, r, err)
			return
		}
		t, err := h.Service.CreateTaxonomy(r.Context(), internal.UserIDFromContext(r.Context()), kind, dto)
		h.respond(w, r, http.StatusCreated, t, err)
	}
}

func (h *Handler) UpdateTaxonomy(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := h.IDParam(r, "id")
		if err != nil {
			h.HandleError(w, r, err)
			return
		}
		var dto UpdateTaxonomyDTO
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleError(w, r, err)
			return
		}
		t, err := h.Service.UpdateTaxonomy(r.Context(), internal.UserIDFromContext(r.Context()), kind, id, dto)
		h.respond(w, r, http.StatusOK, t, err)
	}
}

func (h *Handler) DeleteTaxonomy(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.delete(w, r, func(ctx context.Context, actorID, id int64) error {
			return h.Service.DeleteTaxonomy(ctx, actorID, kind, id)
		})
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID, id int64) error) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := fn(r.Context(), internal.UserIDFromContext(r.Context()), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
