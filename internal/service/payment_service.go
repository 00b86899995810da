package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MarsCodex3/Lawclone/internal/payment"
	"github.com/MarsCodex3/Lawclone/internal/storage"
)

// ErrInvalidPayment is returned when a payment session request is malformed.
var ErrInvalidPayment = errors.New("payment requires a positive amount and an invoice id")

// PaymentService creates hosted-checkout sessions and applies provider
// webhook events to invoices.
type PaymentService struct {
	gateway payment.CheckoutGateway
	store   storage.Store
}

// NewPaymentService creates a PaymentService with the given gateway and store.
func NewPaymentService(gateway payment.CheckoutGateway, store storage.Store) *PaymentService {
	return &PaymentService{gateway: gateway, store: store}
}

// CreateSession asks the provider for a checkout session and returns the
// redirect URL. One attempt, no retry: the payer can re-click pay.
func (s *PaymentService) CreateSession(ctx context.Context, amount decimal.Decimal, invoiceID, description string) (string, error) {
	if invoiceID == "" || !amount.IsPositive() {
		return "", ErrInvalidPayment
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		Amount:      amount,
		InvoiceID:   invoiceID,
		Description: description,
	})
	if err != nil {
		slog.Error("CreateCheckoutSession failed", "invoice_id", invoiceID, "error", err)
		return "", err
	}

	slog.Info("Checkout session created", "invoice_id", invoiceID, "amount", amount.String())
	return url, nil
}

// HandleEvent applies a normalized webhook event. A completed checkout marks
// the referenced invoice paid. Nil events (ignored provider types) are no-ops.
func (s *PaymentService) HandleEvent(ctx context.Context, ev *payment.Event) error {
	if ev == nil {
		return nil
	}

	switch ev.Type {
	case payment.EventCheckoutCompleted:
		if ev.InvoiceID == "" {
			slog.Warn("Checkout completed event without invoice id")
			return nil
		}
		if err := s.store.MarkInvoicePaid(ctx, ev.InvoiceID); err != nil {
			slog.Error("MarkInvoicePaid failed", "invoice_id", ev.InvoiceID, "error", err)
			return err
		}
		slog.Info("Invoice marked paid", "invoice_id", ev.InvoiceID)
	}

	return nil
}
