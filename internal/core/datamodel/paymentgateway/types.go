package paymentgateway

import (
	"errors"
	"strconv"
)

const (
	IntentSucceeded      = "succeeded"
	IntentProcessing     = "processing"
	IntentRequiresAction = "requires_action"
	IntentCanceled       = "canceled"

	MetadataUserID  = "userId"
	MetadataCredits = "credits"

	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

type IntentRequest struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

func (r *IntentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// UserID returns the caller id recorded when the intent was created.
func (i *Intent) UserID() (int64, bool) {
	v, err := strconv.ParseInt(i.Metadata[MetadataUserID], 10, 64)
	return v, err == nil
}

func (i *Intent) Credits() (int64, bool) {
	v, err := strconv.ParseInt(i.Metadata[MetadataCredits], 10, 64)
	return v, err == nil && v > 0
}

type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent
}
