package user

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context, filter ListFilter) ([]*User, int64, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, actorID int64, dto CreateUserDTO) (*User, error)
	UpdateUser(ctx context.Context, actorID, id int64, dto UpdateUserDTO) (*User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
	ListGroups(ctx context.Context) ([]*Group, error)
	CreateGroup(ctx context.Context, dto GroupDTO) (*Group, error)
	UpdateGroup(ctx context.Context, id int64, dto UpdateGroupDTO) (*Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]PermissionModule, error)
	SetGroupPermissions(ctx context.Context, actorID, groupID int64, dto SetPermissionsDTO) ([]string, error)
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

// ListUsers handles GET /admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	groupID, err := h.QueryInt64(r, "group_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	page := h.Pagination(r)

	users, total, err := h.Service.ListUsers(r.Context(), ListFilter{
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		GroupID: groupID,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users, Total: total, Limit: page.Limit, Offset: page.Offset})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	u, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	u, err := h.Service.CreateUser(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	u, err := h.Service.UpdateUser(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), internal.UserIDFromContext(r.Context()), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.ListGroups(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GroupsResponse{Groups: groups})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var dto GroupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	g, err := h.Service.CreateGroup(r.Context(), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	var dto UpdateGroupDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	g, err := h.Service.UpdateGroup(r.Context(), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	if err := h.Service.DeleteGroup(r.Context(), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{Modules: modules})
}

// SetGroupPermissions handles PUT /admin/groups/{id}/permissions
func (h *Handler) SetGroupPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	var dto SetPermissionsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	keys, err := h.Service.SetGroupPermissions(r.Context(), internal.UserIDFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groupId": id, "keys": keys})
}
