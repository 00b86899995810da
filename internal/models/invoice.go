package models

import "github.com/shopspring/decimal"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	// StatusPending is the initial state of every created invoice.
	StatusPending InvoiceStatus = "pending"
	// StatusPaid is set once the payment provider confirms payment.
	StatusPaid InvoiceStatus = "paid"
)

// Frequency tags how often an invoice recurs. It is captured on submission
// but not acted on anywhere downstream (no scheduler exists).
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is one of the known frequency values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Owner is the invoice-issuing party's profile data. A fresh row is created
// on every submission; there is no lookup or dedup by email.
type Owner struct {
	// ID is the unique identifier (UUID format).
	ID string

	Name    string
	Email   string
	Company string // optional
	Address string
	Phone   string // optional
	Logo    string // optional, a reference to an uploaded logo
}

// Client is the bill-to party. Like Owner, created fresh per submission.
type Client struct {
	// ID is the unique identifier (UUID format).
	ID string

	Name    string
	Email   string
	Address string
}

// LineItem is one billable entry on an invoice.
type LineItem struct {
	// ID is the unique identifier (UUID format).
	ID string

	ActivityType string
	Date         string
	Description  string
	Duration     string // optional, free text as entered
	Rate         string // optional, free text as entered

	// Amount is the monetary value of the line. When Duration and Rate are
	// both numeric it is duration times rate rounded to 2 decimal places,
	// regardless of what was submitted.
	Amount decimal.Decimal
}

// Invoice is the aggregate persisted per submission: the owner, the client,
// the line items, and the computed totals.
type Invoice struct {
	// ID is the unique identifier (UUID format).
	ID string

	// Number is the sequential invoice number, e.g. "INV-00042".
	Number string

	Owner  Owner
	Client Client

	// Items are the ordered line items.
	Items []LineItem

	// Subtotal is the sum of all item amounts.
	Subtotal decimal.Decimal

	// Tax is always zero in this version.
	Tax decimal.Decimal

	// Total equals Subtotal plus Tax. Recomputed server-side; the value a
	// client submits is never trusted.
	Total decimal.Decimal

	IssueDate string
	DueDate   string
	Frequency Frequency
	Status    InvoiceStatus

	// CreatedAt is the Unix timestamp when the invoice was created.
	CreatedAt int64
}

// InvoiceSummary is the lightweight listing shape for the dashboard.
type InvoiceSummary struct {
	ID         string
	Number     string
	ClientName string
	Total      decimal.Decimal
	Status     InvoiceStatus
	DueDate    string
}
