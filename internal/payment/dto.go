package payment

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type CreateIntentDTO struct {
	Credits int64 `json:"credits" validate:"required,gt=0"`
}

func (d CreateIntentDTO) Validate() error {
	return validation.Struct(d)
}

type ConfirmDTO struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"notblank,max=255"`
}

func (d *ConfirmDTO) Normalize() {
	d.PaymentIntentID = strings.TrimSpace(d.PaymentIntentID)
}

func (d ConfirmDTO) Validate() error {
	return validation.Struct(d)
}

type IntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Credits         int64  `json:"credits"`
}

type ConfirmResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Credits         int64  `json:"credits"`
	Balance         int64  `json:"balance"`
	// Granted is false when this intent had already been credited.
	Granted bool `json:"granted"`
}

type PurchasesResponse struct {
	Purchases []*Purchase `json:"purchases"`
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Type     string `json:"type"`
}
