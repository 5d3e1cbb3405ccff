package payment

import "time"

const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// CreditPurchase tracks one payment intent opened for a credit package.
type CreditPurchase struct {
	ID              int64      `gorm:"primaryKey"`
	UserID          int64      `gorm:"column:user_id;not null;index"`
	PaymentIntentID string     `gorm:"column:payment_intent_id;not null;uniqueIndex"`
	Credits         int64      `gorm:"column:credits;not null"`
	AmountCents     int64      `gorm:"column:amount_cents;not null"`
	Currency        string     `gorm:"column:currency;not null"`
	Status          string     `gorm:"column:status;not null;default:pending"`
	GatewayStatus   string     `gorm:"column:gateway_status"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
