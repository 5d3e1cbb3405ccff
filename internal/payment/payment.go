package payment

import (
	"time"

	paymentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/payment"
)

// Purchase is one credit package bought through the payment gateway.
type Purchase struct {
	ID              int64      `json:"id"`
	PaymentIntentID string     `json:"paymentIntentId"`
	Credits         int64      `json:"credits"`
	AmountCents     int64      `json:"amountCents"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func FromDataModel(p *paymentDatamodel.CreditPurchase) *Purchase {
	return &Purchase{
		ID:              p.ID,
		PaymentIntentID: p.PaymentIntentID,
		Credits:         p.Credits,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		Status:          p.Status,
		CompletedAt:     p.CompletedAt,
		CreatedAt:       p.CreatedAt,
	}
}
