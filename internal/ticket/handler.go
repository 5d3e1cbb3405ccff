package ticket

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor Actor, filter ListFilter) ([]*Ticket, int64, error)
	Get(ctx context.Context, actor Actor, id int64) (*Ticket, error)
	Create(ctx context.Context, actor Actor, dto CreateTicketDTO) (*Ticket, error)
	Update(ctx context.Context, actor Actor, id int64, dto UpdateTicketDTO) (*Ticket, error)
	Delete(ctx context.Context, actor Actor, id int64) error
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
	return Actor{ID: p.ID, CanManage: p.Can(auth.PermTicketsManage)}
}

// List handles GET /tickets. Support staff may narrow by ?user_id.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.QueryInt64(r, "user_id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	q := r.URL.Query()
	page := h.Pagination(r)

	tickets, total, err := h.Service.List(r.Context(), actorFrom(r), ListFilter{
		UserID:   userID,
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TicketsResponse{Tickets: tickets, Total: total, Limit: page.Limit, Offset: page.Offset})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	t, err := h.Service.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateTicketDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	t, err := h.Service.Create(r.Context(), actorFrom(r), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	var dto UpdateTicketDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}
	t, err := h.Service.Update(r.Context(), actorFrom(r), id, dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), actorFrom(r), id); err != nil {
		h.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
