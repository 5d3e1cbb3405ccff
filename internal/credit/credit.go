package credit

import (
	"time"

	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
)

// Transaction is one ledger entry. Amount is negative for spends.
type Transaction struct {
	ID           int64     `json:"id"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balanceAfter"`
	Kind         string    `json:"kind"`
	Reason       string    `json:"reason"`
	Reference    string    `json:"reference,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func FromDataModel(t *creditDatamodel.CreditTransaction) *Transaction {
	out := &Transaction{
		ID:           t.ID,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Kind:         t.Kind,
		Reason:       t.Reason,
		CreatedAt:    t.CreatedAt,
	}
	if t.Reference != nil {
		out.Reference = *t.Reference
	}
	return out
}
