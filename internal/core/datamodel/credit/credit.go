package credit

import "time"

const (
	KindSpend    = "spend"
	KindGrant    = "grant"
	KindPurchase = "purchase"
	KindAdjust   = "adjust"
)

type CreditTransaction struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	Amount       int64     `gorm:"column:amount;not null"`
	BalanceAfter int64     `gorm:"column:balance_after;not null;default:0"`
	Kind         string    `gorm:"column:kind;not null"`
	Reason       string    `gorm:"column:reason"`
	Reference    *string   `gorm:"column:reference;uniqueIndex"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
