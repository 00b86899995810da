// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/MarsCodex3/Lawclone/internal/models"
)

// ErrNotFound is returned when a requested invoice does not exist.
var ErrNotFound = errors.New("invoice not found")

// Store defines the interface for invoice storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateInvoice atomically persists the owner, the client, the invoice,
	// and its line items, assigning the invoice the next sequential number.
	// Either every record of the submission is written or none are.
	// The ID and Number fields are populated by the store.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error

	// GetInvoice retrieves a full invoice by its ID, including the owner,
	// the client, and the ordered line items.
	GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)

	// ListInvoices returns summaries of all invoices, newest first.
	ListInvoices(ctx context.Context) ([]models.InvoiceSummary, error)

	// MarkInvoicePaid transitions an invoice from pending to paid.
	MarkInvoicePaid(ctx context.Context, invoiceID string) error

	// Close releases any resources held by the store.
	Close() error
}
