package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/backoffice/internal"
	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
	userDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/user"
	"github.com/frahmantamala/backoffice/internal/credit"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

var _ credit.RepositoryAPI = (*CreditRepository)(nil)

var errUserNotFound = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)

func (r *CreditRepository) Balance(ctx context.Context, userID int64) (int64, bool, error) {
	var balances []int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Pluck("ai_credits", &balances).Error
	if err != nil || len(balances) == 0 {
		return 0, false, err
	}
	return balances[0], true, nil
}

// Spend runs the conditional decrement
// UPDATE users SET ai_credits = ai_credits - ? WHERE id = ? AND ai_credits >= ?
// so two concurrent spends can never overdraw the balance.
func (r *CreditRepository) Spend(ctx context.Context, userID, amount int64, kind, reason string) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userDatamodel.User{}).
			Where("id = ? AND ai_credits >= ?", userID, amount).
			UpdateColumn("ai_credits", gorm.Expr("ai_credits - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			_, found, err := balanceIn(tx, userID)
			if err != nil {
				return err
			}
			if !found {
				return errUserNotFound
			}
			return internal.ErrInsufficientCredits
		}

		b, _, err := balanceIn(tx, userID)
		if err != nil {
			return err
		}
		balance = b

		return tx.Create(&creditDatamodel.CreditTransaction{
			UserID:       userID,
			Amount:       -amount,
			BalanceAfter: balance,
			Kind:         kind,
			Reason:       reason,
		}).Error
	})
	return balance, err
}

// Grant writes the ledger row first. A referenced grant whose reference is
// already recorded inserts nothing, which makes replays a no-op.
func (r *CreditRepository) Grant(ctx context.Context, userID, amount int64, kind, reason string, reference *string) (int64, bool, error) {
	var (
		balance int64
		applied bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &creditDatamodel.CreditTransaction{
			UserID:    userID,
			Amount:    amount,
			Kind:      kind,
			Reason:    reason,
			Reference: reference,
		}

		insert := tx
		if reference != nil {
			insert = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "reference"}},
				DoNothing: true,
			})
		}
		res := insert.Create(entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			b, found, err := balanceIn(tx, userID)
			if err != nil {
				return err
			}
			if !found {
				return errUserNotFound
			}
			balance = b
			return nil
		}

		upd := tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			UpdateColumn("ai_credits", gorm.Expr("ai_credits + ?", amount))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return errUserNotFound
		}

		b, _, err := balanceIn(tx, userID)
		if err != nil {
			return err
		}
		balance = b
		applied = true

		return tx.Model(entry).UpdateColumn("balance_after", balance).Error
	})
	if err != nil {
		return 0, false, err
	}
	return balance, applied, nil
}

func (r *CreditRepository) History(ctx context.Context, userID int64, limit int) ([]*creditDatamodel.CreditTransaction, error) {
	var rows []*creditDatamodel.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func balanceIn(tx *gorm.DB, userID int64) (int64, bool, error) {
	var balances []int64
	err := tx.Model(&userDatamodel.User{}).Where("id = ?", userID).Pluck("ai_credits", &balances).Error
	if err != nil || len(balances) == 0 {
		return 0, false, err
	}
	return balances[0], true, nil
}
