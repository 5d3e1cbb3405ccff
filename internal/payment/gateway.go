package payment

import (
	"context"

	gatewaytypes "github.com/frahmantamala/backoffice/internal/core/datamodel/paymentgateway"
)

// Gateway is the card processor behind credit purchases. paymentgateway
// provides the Stripe implementation.
type Gateway interface {
	CreateIntent(ctx context.Context, req *gatewaytypes.IntentRequest) (*gatewaytypes.Intent, error)
	// GetIntent returns nil, nil when the processor has no such intent.
	GetIntent(ctx context.Context, id string) (*gatewaytypes.Intent, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*gatewaytypes.WebhookEvent, error)
}
