package payment

import (
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

// maxWebhookBytes matches the payload cap the gateway documents.
const maxWebhookBytes = 65536

type ServiceAPI interface {
	CreateIntent(ctx context.Context, userID int64, dto CreateIntentDTO) (*IntentResponse, error)
	Confirm(ctx context.Context, userID int64, dto ConfirmDTO) (*ConfirmResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResponse, error)
	ListPurchases(ctx context.Context, userID int64) ([]*Purchase, error)
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

// CreateIntent handles POST /create-payment-intent
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var dto CreateIntentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	resp, err := h.Service.CreateIntent(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /confirm-payment
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var dto ConfirmDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, r, err)
		return
	}

	resp, err := h.Service.Confirm(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.Service.ListPurchases(r.Context(), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PurchasesResponse{Purchases: purchases})
}

// Webhook handles POST /payments/webhook. The raw body is needed for the
// signature check, so it is read directly instead of decoded.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.HandleError(w, r, internal.NewValidationError("unreadable request body", internal.ErrCodeInvalidRequest).WithCause(err))
		return
	}

	resp, err := h.Service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
