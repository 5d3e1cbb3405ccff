package payment

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/backoffice/internal"
	creditDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/credit"
	paymentDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/payment"
	gatewaytypes "github.com/frahmantamala/backoffice/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/backoffice/internal/core/events"
	"github.com/frahmantamala/backoffice/internal/metrics"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *paymentDatamodel.CreditPurchase) error
	// Complete records the final state of an intent, inserting the row when
	// the intent was opened outside this service.
	Complete(ctx context.Context, p *paymentDatamodel.CreditPurchase) error
	SetStatus(ctx context.Context, paymentIntentID, status, gatewayStatus string) error
	ListByUser(ctx context.Context, userID int64) ([]*paymentDatamodel.CreditPurchase, error)
}

// CreditGranter applies purchased credits. A repeated reference must not
// grant twice.
type CreditGranter interface {
	Grant(ctx context.Context, actorID, userID, amount int64, kind, reason, reference string) (int64, bool, error)
}

type Config struct {
	Currency         string
	CreditPriceCents int64
	MinCredits       int64
	MaxCredits       int64
}

type Service struct {
	repo      RepositoryAPI
	gateway   Gateway
	credits   CreditGranter
	publisher events.Publisher
	config    Config
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, gateway Gateway, credits CreditGranter, publisher events.Publisher, config Config, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		credits:   credits,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// CreateIntent opens a payment intent for a credit package priced at
// credits × CreditPriceCents.
func (s *Service) CreateIntent(ctx context.Context, userID int64, dto CreateIntentDTO) (*IntentResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.Credits < s.config.MinCredits || dto.Credits > s.config.MaxCredits {
		return nil, internal.NewValidationFieldError("credits",
			"must be between "+strconv.FormatInt(s.config.MinCredits, 10)+" and "+strconv.FormatInt(s.config.MaxCredits, 10),
			internal.ErrCodeValidationFailed)
	}

	amount := dto.Credits * s.config.CreditPriceCents
	intent, err := s.gateway.CreateIntent(ctx, &gatewaytypes.IntentRequest{
		Amount:   amount,
		Currency: s.config.Currency,
		Metadata: map[string]string{
			gatewaytypes.MetadataUserID:  strconv.FormatInt(userID, 10),
			gatewaytypes.MetadataCredits: strconv.FormatInt(dto.Credits, 10),
		},
	})
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("create", "error").Inc()
		s.logger.ErrorContext(ctx, "failed to create payment intent", "user_id", userID, "amount", amount, "error", err)
		return nil, internal.NewExternalError("Payment provider is unavailable", internal.ErrCodePaymentFailed, err)
	}

	purchase := &paymentDatamodel.CreditPurchase{
		UserID:          userID,
		PaymentIntentID: intent.ID,
		Credits:         dto.Credits,
		AmountCents:     amount,
		Currency:        s.config.Currency,
		Status:          paymentDatamodel.StatusPending,
		GatewayStatus:   intent.Status,
	}
	if err := s.repo.Create(ctx, purchase); err != nil {
		return nil, internal.NewInternalError("failed to record purchase", err)
	}

	metrics.PaymentIntents.WithLabelValues("create", "ok").Inc()
	s.logger.InfoContext(ctx, "payment intent created",
		"user_id", userID,
		"payment_intent_id", intent.ID,
		"credits", dto.Credits,
		"amount", amount)
	events.Emit(ctx, s.publisher, s.logger, events.NewActivityEvent(events.TypePaymentCreated, userID, "payment", intent.ID, map[string]interface{}{
		"credits": dto.Credits,
		"amount":  amount,
	}))

	return &IntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        s.config.Currency,
		Credits:         dto.Credits,
	}, nil
}

// Confirm credits a succeeded intent to its owner. Confirming the same
// intent again returns the balance without a second grant.
func (s *Service) Confirm(ctx context.Context, userID int64, dto ConfirmDTO) (*ConfirmResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	intent, err := s.gateway.GetIntent(ctx, dto.PaymentIntentID)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("confirm", "error").Inc()
		return nil, internal.NewExternalError("Payment provider is unavailable", internal.ErrCodePaymentFailed, err)
	}
	if intent == nil {
		return nil, internal.NewNotFoundError("Payment not found", internal.ErrCodeNotFound)
	}

	owner, ok := intent.UserID()
	if !ok || owner != userID {
		metrics.PaymentIntents.WithLabelValues("confirm", "forbidden").Inc()
		s.logger.WarnContext(ctx, "payment confirmation by a non-owner", "user_id", userID, "payment_intent_id", intent.ID)
		return nil, internal.NewForbiddenError("This payment belongs to another account", internal.ErrCodePaymentOwnerMismatch)
	}

	if intent.Status != gatewaytypes.IntentSucceeded {
		metrics.PaymentIntents.WithLabelValues("confirm", "incomplete").Inc()
		return nil, internal.NewValidationError("Payment has not completed", internal.ErrCodePaymentNotCompleted).
			WithDetails(map[string]string{"status": intent.Status})
	}

	resp, err := s.fulfil(ctx, userID, intent)
	if err != nil {
		return nil, err
	}
	metrics.PaymentIntents.WithLabelValues("confirm", "ok").Inc()
	return resp, nil
}

// HandleWebhook applies a verified gateway event. Unknown event types are
// acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResponse, error) {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("webhook", "rejected").Inc()
		s.logger.WarnContext(ctx, "rejected payment webhook", "error", err)
		return nil, internal.NewValidationError("Invalid webhook signature", internal.ErrCodeInvalidSignature).WithCause(err)
	}

	s.logger.InfoContext(ctx, "received payment webhook", "event_id", event.ID, "type", event.Type)

	switch event.Type {
	case gatewaytypes.EventIntentSucceeded:
		owner, ok := event.Intent.UserID()
		if !ok {
			s.logger.WarnContext(ctx, "payment intent without owner metadata", "payment_intent_id", event.Intent.ID)
			break
		}
		if _, err := s.fulfil(ctx, owner, event.Intent); err != nil {
			return nil, err
		}
		metrics.PaymentIntents.WithLabelValues("webhook", "ok").Inc()
	case gatewaytypes.EventIntentFailed:
		if err := s.repo.SetStatus(ctx, event.Intent.ID, paymentDatamodel.StatusFailed, event.Intent.Status); err != nil {
			return nil, internal.NewInternalError("failed to record purchase", err)
		}
		metrics.PaymentIntents.WithLabelValues("webhook", "failed").Inc()
	}

	return &WebhookResponse{Received: true, Type: event.Type}, nil
}

func (s *Service) ListPurchases(ctx context.Context, userID int64) ([]*Purchase, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list purchases", err)
	}
	out := make([]*Purchase, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// fulfil grants the intent's credits using the intent id as the ledger
// reference, so the confirm endpoint and the webhook can both run it.
func (s *Service) fulfil(ctx context.Context, actorID int64, intent *gatewaytypes.Intent) (*ConfirmResponse, error) {
	owner, _ := intent.UserID()
	credits, ok := intent.Credits()
	if !ok {
		return nil, internal.NewValidationError("Payment is missing its credit package", internal.ErrCodePaymentFailed)
	}

	balance, granted, err := s.credits.Grant(ctx, actorID, owner, credits, creditDatamodel.KindPurchase, "stripe:"+intent.ID, intent.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Complete(ctx, &paymentDatamodel.CreditPurchase{
		UserID:          owner,
		PaymentIntentID: intent.ID,
		Credits:         credits,
		AmountCents:     intent.Amount,
		Currency:        intent.Currency,
		Status:          paymentDatamodel.StatusSucceeded,
		GatewayStatus:   intent.Status,
	}); err != nil {
		return nil, internal.NewInternalError("failed to record purchase", err)
	}

	s.logger.InfoContext(ctx, "payment fulfilled",
		"user_id", owner,
		"payment_intent_id", intent.ID,
		"credits", credits,
		"granted", granted)

	return &ConfirmResponse{
		PaymentIntentID: intent.ID,
		Credits:         credits,
		Balance:         balance,
		Granted:         granted,
	}, nil
}
