package credit

import (
	"strings"

	"github.com/frahmantamala/backoffice/internal/core/common/validation"
)

type RunPromptDTO struct {
	Variables map[string]string `json:"variables"`
}

type AdjustDTO struct {
	Amount int64  `json:"amount" validate:"ne=0,min=-100000,max=100000"`
	Reason string `json:"reason" validate:"notblank,max=255"`
}

func (d *AdjustDTO) Normalize() {
	d.Reason = strings.TrimSpace(d.Reason)
}

func (d AdjustDTO) Validate() error {
	return validation.Struct(d)
}

type BalanceResponse struct {
	Balance      int64          `json:"balance"`
	Transactions []*Transaction `json:"transactions"`
}

type RunResponse struct {
	PromptID     int64  `json:"promptId"`
	Output       string `json:"output"`
	CreditsSpent int64  `json:"creditsSpent"`
	Balance      int64  `json:"balance"`
}

type AdjustResponse struct {
	UserID  int64 `json:"userId"`
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}
