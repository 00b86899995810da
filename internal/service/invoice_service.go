// Package service implements the application services that sit between the
// HTTP layer and storage.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MarsCodex3/Lawclone/internal/calculator"
	"github.com/MarsCodex3/Lawclone/internal/models"
	"github.com/MarsCodex3/Lawclone/internal/storage"
)

// ErrNoItems is returned when an invoice is submitted without line items.
var ErrNoItems = errors.New("invoice requires at least one line item")

// LineItemInput is one submitted line item with raw form values.
type LineItemInput struct {
	ActivityType string
	Date         string
	Description  string
	Duration     string
	Rate         string
	Amount       string
}

// InvoiceInput is the validated invoice submission handed to the service.
// Any client-computed total is deliberately absent: the service recomputes
// it from the line items.
type InvoiceInput struct {
	Owner     models.Owner
	Client    models.Client
	IssueDate string
	DueDate   string
	Frequency models.Frequency
	Items     []LineItemInput
}

// InvoiceService orchestrates invoice creation and retrieval.
type InvoiceService struct {
	store storage.Store
}

// NewInvoiceService creates an InvoiceService with the given storage backend.
func NewInvoiceService(store storage.Store) *InvoiceService {
	return &InvoiceService{store: store}
}

// Create computes each line amount and the invoice total, then persists the
// owner, client, invoice, and items atomically. Returns the stored invoice
// with its generated ID and number.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}

	items := make([]models.LineItem, len(in.Items))
	calcItems := make([]calculator.Item, len(in.Items))
	for i, it := range in.Items {
		calcItems[i] = calculator.Item{
			Amount:   it.Amount,
			Duration: it.Duration,
			Rate:     it.Rate,
		}
		items[i] = models.LineItem{
			ActivityType: it.ActivityType,
			Date:         it.Date,
			Description:  it.Description,
			Duration:     it.Duration,
			Rate:         it.Rate,
			Amount:       calculator.ItemAmount(calcItems[i]),
		}
	}

	total := calculator.Total(calcItems)

	inv := &models.Invoice{
		Owner:     in.Owner,
		Client:    in.Client,
		Items:     items,
		Subtotal:  total,
		Tax:       decimal.Zero,
		Total:     total,
		IssueDate: in.IssueDate,
		DueDate:   in.DueDate,
		Frequency: in.Frequency,
		Status:    models.StatusPending,
	}

	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		slog.Error("CreateInvoice failed", "error", err)
		return nil, err
	}

	slog.Info("Invoice created",
		"invoice_id", inv.ID,
		"number", inv.Number,
		"total", inv.Total.String(),
		"items_count", len(inv.Items),
	)

	return inv, nil
}

// Get retrieves a full invoice by ID.
func (s *InvoiceService) Get(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		slog.Error("GetInvoice failed", "invoice_id", invoiceID, "error", err)
		return nil, err
	}
	return inv, nil
}

// List returns summaries of all invoices, newest first.
func (s *InvoiceService) List(ctx context.Context) ([]models.InvoiceSummary, error) {
	summaries, err := s.store.ListInvoices(ctx)
	if err != nil {
		slog.Error("ListInvoices failed", "error", err)
		return nil, err
	}
	return summaries, nil
}
