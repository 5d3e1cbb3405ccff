// Package paymentgateway talks to Stripe for credit purchases.
package paymentgateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	gatewaytypes "github.com/frahmantamala/backoffice/internal/core/datamodel/paymentgateway"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
}

func NewStripeGateway(config Config, logger *slog.Logger) *StripeGateway {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient: &http.Client{Timeout: timeout},
		}),
	}
	api := &client.API{}
	api.Init(config.SecretKey, backends)

	return &StripeGateway{
		api:           api,
		webhookSecret: config.WebhookSecret,
		logger:        logger,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req *gatewaytypes.IntentRequest) (*gatewaytypes.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.ErrorContext(ctx, "stripe: create payment intent failed", "amount", req.Amount, "error", err)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	g.logger.InfoContext(ctx, "stripe: payment intent created", "payment_intent_id", pi.ID, "amount", pi.Amount)
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*gatewaytypes.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment intent %s: %w", id, err)
	}
	return toIntent(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header. Events from a newer
// API version than the pinned library are still accepted.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*gatewaytypes.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &gatewaytypes.WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil || !isIntentEvent(out.Type) {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.Intent = toIntent(&pi)
	return out, nil
}

func isIntentEvent(eventType string) bool {
	return eventType == gatewaytypes.EventIntentSucceeded || eventType == gatewaytypes.EventIntentFailed
}

func toIntent(pi *stripe.PaymentIntent) *gatewaytypes.Intent {
	return &gatewaytypes.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
