package paymentgateway

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment_succeeded"
	WebhookPaymentRefunded  WebhookEventType = "payment_refunded"
	WebhookIgnored          WebhookEventType = "ignored"
)

// WebhookEvent is a verified gateway notification reduced to what billing needs.
type WebhookEvent struct {
	ID               string
	Gateway          string
	Type             WebhookEventType
	RawType          string
	GatewayPaymentID string
	// AmountRefunded is the cumulative refunded amount in major units.
	AmountRefunded decimal.Decimal
}

// WebhookVerifier authenticates and decodes gateway webhooks.
type WebhookVerifier interface {
	ID() string
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
