package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/payment"
	"github.com/frahmantamala/backoffice/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

var _ payment.RepositoryAPI = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDatamodel.CreditPurchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) Complete(ctx context.Context, p *paymentDatamodel.CreditPurchase) error {
	now := time.Now()
	p.CompletedAt = &now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_intent_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "gateway_status", "completed_at", "updated_at"}),
	}).Create(p).Error
}

func (r *PaymentRepository) SetStatus(ctx context.Context, paymentIntentID, status, gatewayStatus string) error {
	return r.db.WithContext(ctx).Model(&paymentDatamodel.CreditPurchase{}).
		Where("payment_intent_id = ?", paymentIntentID).
		Updates(map[string]interface{}{
			"status":         status,
			"gateway_status": gatewayStatus,
			"updated_at":     time.Now(),
		}).Error
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID int64) ([]*paymentDatamodel.CreditPurchase, error) {
	var rows []*paymentDatamodel.CreditPurchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
