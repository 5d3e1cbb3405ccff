package credit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"text/template"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/content"
	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/metrics"
)

const defaultHistory = 20

// RepositoryAPI owns the balance column and the ledger. Spend and Grant
// change both in one transaction.
type RepositoryAPI interface {
	// Balance returns found=false for an unknown user.
	Balance(ctx context.Context, userID int64) (balance int64, found bool, err error)
	// Spend decrements only while the balance covers amount. It returns
	// internal.ErrInsufficientCredits otherwise.
	Spend(ctx context.Context, userID, amount int64, kind, reason string) (int64, error)
	// Grant increments the balance. With a reference already in the ledger
	// it changes nothing and reports applied=false.
	Grant(ctx context.Context, userID, amount int64, kind, reason string, reference *string) (balance int64, applied bool, err error)
	History(ctx context.Context, userID int64, limit int) ([]*creditDatamodel.CreditTransaction, error)
}

// PromptSource looks up runnable prompts.
type PromptSource interface {
	GetPrompt(ctx context.Context, id int64, activeOnly bool) (*content.AIPrompt, error)
}

type Service struct {
	repo      RepositoryAPI
	prompts   PromptSource
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, prompts PromptSource, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		prompts:   prompts,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Balance(ctx context.Context, userID int64, limit int) (*BalanceResponse, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	balance, found, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to read balance", err)
	}
	if !found {
		return nil, userNotFound()
	}

	rows, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to read credit history", err)
	}
	out := make([]*Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return &BalanceResponse{Balance: balance, Transactions: out}, nil
}

// Spend takes amount credits from the user, failing with 402 when the
// balance does not cover it.
func (s *Service) Spend(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	return s.spend(ctx, userID, userID, amount, creditDatamodel.KindSpend, reason)
}

func (s *Service) spend(ctx context.Context, actorID, userID, amount int64, kind, reason string) (int64, error) {
	if amount <= 0 {
		return 0, internal.NewValidationFieldError("amount", "must be positive", internal.ErrCodeValidationFailed)
	}

	balance, err := s.repo.Spend(ctx, userID, amount, kind, reason)
	if err != nil {
		if errors.Is(err, internal.ErrInsufficientCredits) {
			metrics.CreditSpendRejected.Inc()
			return 0, err
		}
		if _, ok := internal.IsAppError(err); ok {
			return 0, err
		}
		return 0, internal.NewInternalError("failed to spend credits", err)
	}

	metrics.CreditsSpent.Add(float64(amount))
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypeCreditsSpent, actorID, "user", strconv.FormatInt(userID, 10), map[string]interface{}{
		"amount":  amount,
		"balance": balance,
		"reason":  reason,
	}))
	return balance, nil
}

// Grant adds credits. A non-empty reference makes the grant idempotent:
// repeating it returns the current balance with applied=false.
func (s *Service) Grant(ctx context.Context, actorID, userID, amount int64, kind, reason, reference string) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, internal.NewValidationFieldError("amount", "must be positive", internal.ErrCodeValidationFailed)
	}

	var ref *string
	if reference != "" {
		ref = &reference
	}
	balance, applied, err := s.repo.Grant(ctx, userID, amount, kind, reason, ref)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return 0, false, err
		}
		return 0, false, internal.NewInternalError("failed to grant credits", err)
	}
	if !applied {
		s.logger.InfoContext(ctx, "credit grant already applied", "user_id", userID, "reference", reference)
		return balance, false, nil
	}

	eventType := events.TypeCreditsGranted
	if kind == creditDatamodel.KindPurchase {
		eventType = events.TypeCreditsPurchased
		metrics.CreditsPurchased.Add(float64(amount))
	}
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(eventType, actorID, "user", strconv.FormatInt(userID, 10), map[string]interface{}{
		"amount":    amount,
		"balance":   balance,
		"reason":    reason,
		"reference": reference,
	}))
	return balance, true, nil
}

// RunPrompt renders an active prompt with the caller's variables and
// charges its credit cost. Rendering happens first so a broken template
// or a missing variable costs nothing.
func (s *Service) RunPrompt(ctx context.Context, userID, promptID int64, dto RunPromptDTO) (*RunResponse, error) {
	prompt, err := s.prompts.GetPrompt(ctx, promptID, true)
	if err != nil {
		return nil, err
	}

	output, err := Render(prompt.Content, dto.Variables)
	if err != nil {
		return nil, err
	}

	balance, err := s.spend(ctx, userID, userID, prompt.CreditCost, creditDatamodel.KindSpend, "ai_prompt:"+strconv.FormatInt(prompt.ID, 10))
	if err != nil {
		return nil, err
	}

	return &RunResponse{
		PromptID:     prompt.ID,
		Output:       output,
		CreditsSpent: prompt.CreditCost,
		Balance:      balance,
	}, nil
}

// Adjust applies an admin correction: positive amounts grant, negative
// amounts spend and cannot take the balance below zero.
func (s *Service) Adjust(ctx context.Context, actorID, userID int64, dto AdjustDTO) (*AdjustResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		balance int64
		err     error
	)
	if dto.Amount > 0 {
		balance, _, err = s.Grant(ctx, actorID, userID, dto.Amount, creditDatamodel.KindAdjust, dto.Reason, "")
	} else {
		balance, err = s.spend(ctx, actorID, userID, -dto.Amount, creditDatamodel.KindAdjust, dto.Reason)
	}
	if err != nil {
		return nil, err
	}
	return &AdjustResponse{UserID: userID, Amount: dto.Amount, Balance: balance}, nil
}

// Render executes a prompt template against vars. Unknown variables are
// an error rather than an empty string.
func Render(text string, vars map[string]string) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", internal.NewValidationError("prompt template is invalid", internal.ErrCodeValidationFailed).WithCause(err)
	}
	if vars == nil {
		vars = map[string]string{}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", internal.NewValidationError("prompt variables do not match the template", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return buf.String(), nil
}

func userNotFound() error {
	return internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
}
