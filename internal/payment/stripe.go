package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Ensure the Stripe types satisfy the domain interfaces
var (
	_ CheckoutGateway  = (*StripeGateway)(nil)
	_ WebhookProcessor = (*StripeWebhook)(nil)
)

// StripeGateway implements CheckoutGateway using Stripe hosted checkout.
type StripeGateway struct {
	client  *client.API
	baseURL string
}

// NewStripeGateway creates a gateway authenticated with the given secret key.
// baseURL is the application URL the success/cancel redirects point back to.
func NewStripeGateway(apiKey, baseURL string) *StripeGateway {
	// Per-instance client, not the package-global stripe state
	sc := &client.API{}
	sc.Init(apiKey, nil)

	return &StripeGateway{client: sc, baseURL: baseURL}
}

// CreateCheckoutSession creates a Stripe checkout session for the invoice:
// currency fixed to USD, one line item priced in minor units, the invoice ID
// in the session metadata.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(fmt.Sprintf("Invoice #%s", req.InvoiceID)),
	}
	if req.Description != "" {
		productData.Description = stripe.String(req.Description)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(string(stripe.CurrencyUSD)),
					ProductData: productData,
					UnitAmount:  stripe.Int64(MinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.successURL(req.InvoiceID)),
		CancelURL:  stripe.String(g.cancelURL(req.InvoiceID)),
	}
	params.Context = ctx
	params.AddMetadata("invoiceId", req.InvoiceID)

	session, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}

func (g *StripeGateway) successURL(invoiceID string) string {
	return fmt.Sprintf("%s/invoices/%s/success", g.baseURL, invoiceID)
}

func (g *StripeGateway) cancelURL(invoiceID string) string {
	return fmt.Sprintf("%s/invoices/%s", g.baseURL, invoiceID)
}

// StripeWebhook implements WebhookProcessor for Stripe deliveries.
type StripeWebhook struct {
	secret string
}

// NewStripeWebhook creates a processor that verifies deliveries against the
// given webhook signing secret.
func NewStripeWebhook(secret string) *StripeWebhook {
	return &StripeWebhook{secret: secret}
}

// VerifyAndParse checks the Stripe-Signature header and maps
// checkout.session.completed to a domain event. Other event types are
// acknowledged but ignored.
func (p *StripeWebhook) VerifyAndParse(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.secret)
	if err != nil {
		return nil, fmt.Errorf("stripe signature invalid: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return &Event{
			Type:      EventCheckoutCompleted,
			InvoiceID: session.Metadata["invoiceId"],
		}, nil
	}

	return nil, nil
}
