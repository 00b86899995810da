// Package payment abstracts the hosted-checkout provider behind small
// interfaces so the service layer never imports the provider SDK.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// SessionRequest describes one hosted-checkout session to create.
type SessionRequest struct {
	// Amount is the invoice total in major units (e.g. 49.99 USD).
	Amount decimal.Decimal

	// InvoiceID identifies the invoice being paid. It is attached to the
	// session metadata for later reconciliation.
	InvoiceID string

	// Description is shown to the payer on the checkout page.
	Description string
}

// CheckoutGateway creates hosted-checkout sessions with the payment provider.
type CheckoutGateway interface {
	// CreateCheckoutSession submits the session request and returns the URL
	// the payer must be redirected to. Single best-effort attempt, no retry.
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error)
}

// EventType classifies normalized provider events.
type EventType string

const (
	// EventCheckoutCompleted signals the payer finished the hosted checkout.
	EventCheckoutCompleted EventType = "checkout_completed"
)

// Event is a provider webhook notification mapped to domain terms.
type Event struct {
	Type      EventType
	InvoiceID string
}

// WebhookProcessor verifies and parses raw provider webhook deliveries.
type WebhookProcessor interface {
	// VerifyAndParse checks the delivery signature and maps the payload to a
	// domain event. It returns (nil, nil) for event types we ignore.
	VerifyAndParse(payload []byte, signature string) (*Event, error)
}

// MinorUnits converts a major-unit amount to the provider's minor units
// (cents for USD): round(amount * 100).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
