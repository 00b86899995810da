// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/MarsCodex3/Lawclone/internal/models"
	"github.com/MarsCodex3/Lawclone/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateInvoice persists the owner, the client, the invoice, and its line
// items in a single transaction. The invoice number comes from the
// invoice_sequence table, bumped inside the same transaction so concurrent
// submissions cannot observe the same value. Should the UNIQUE constraint on
// the number still trip, the whole creation is retried once.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	err := s.createInvoice(ctx, inv)
	if err != nil && isNumberConflict(err) {
		err = s.createInvoice(ctx, inv)
	}
	return err
}

func (s *SQLiteStore) createInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Owner.ID == "" {
		inv.Owner.ID = uuid.New().String()
	}
	if inv.Client.ID == "" {
		inv.Client.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	if inv.Status == "" {
		inv.Status = models.StatusPending
	}
	if inv.Frequency == "" {
		inv.Frequency = models.FrequencyOnce
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Insert owner (fresh row per submission, no dedup by email)
	_, err = tx.ExecContext(ctx,
		"INSERT INTO owners (id, name, email, company, address, phone, logo, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		inv.Owner.ID, inv.Owner.Name, inv.Owner.Email, inv.Owner.Company, inv.Owner.Address, inv.Owner.Phone, inv.Owner.Logo, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}

	// Insert client
	_, err = tx.ExecContext(ctx,
		"INSERT INTO clients (id, name, email, address, created_at) VALUES (?, ?, ?, ?, ?)",
		inv.Client.ID, inv.Client.Name, inv.Client.Email, inv.Client.Address, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}

	// Bump the sequence and format the invoice number
	var seq int64
	err = tx.QueryRowContext(ctx,
		"UPDATE invoice_sequence SET last_value = last_value + 1 WHERE id = 1 RETURNING last_value",
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	inv.Number = fmt.Sprintf("INV-%05d", seq)

	// Insert invoice
	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoices (id, number, owner_id, client_id, subtotal, tax, total, issue_date, due_date, frequency, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Number, inv.Owner.ID, inv.Client.ID,
		inv.Subtotal.String(), inv.Tax.String(), inv.Total.String(),
		inv.IssueDate, inv.DueDate, string(inv.Frequency), string(inv.Status), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	// Insert line items, preserving submission order
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO line_items (id, invoice_id, position, activity_type, date, description, duration, rate, amount)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, inv.ID, i, item.ActivityType, item.Date, item.Description, item.Duration, item.Rate, item.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetInvoice retrieves a full invoice by ID, including owner, client, and
// ordered line items.
func (s *SQLiteStore) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var subtotal, tax, total string
	err := s.db.QueryRowContext(ctx,
		`SELECT i.id, i.number, i.subtotal, i.tax, i.total, i.issue_date, i.due_date, i.frequency, i.status, i.created_at,
		        o.id, o.name, o.email, o.company, o.address, o.phone, o.logo,
		        c.id, c.name, c.email, c.address
		 FROM invoices i
		 JOIN owners o ON o.id = i.owner_id
		 JOIN clients c ON c.id = i.client_id
		 WHERE i.id = ?`,
		invoiceID,
	).Scan(
		&inv.ID, &inv.Number, &subtotal, &tax, &total, &inv.IssueDate, &inv.DueDate, &inv.Frequency, &inv.Status, &inv.CreatedAt,
		&inv.Owner.ID, &inv.Owner.Name, &inv.Owner.Email, &inv.Owner.Company, &inv.Owner.Address, &inv.Owner.Phone, &inv.Owner.Logo,
		&inv.Client.ID, &inv.Client.Name, &inv.Client.Email, &inv.Client.Address,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("failed to parse subtotal: %w", err)
	}
	if inv.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("failed to parse tax: %w", err)
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse total: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, activity_type, date, description, duration, rate, amount FROM line_items WHERE invoice_id = ? ORDER BY position",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		var amount string
		if err := rows.Scan(&item.ID, &item.ActivityType, &item.Date, &item.Description, &item.Duration, &item.Rate, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse line item amount: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}

	return inv, nil
}

// ListInvoices returns summaries of all invoices, newest first.
func (s *SQLiteStore) ListInvoices(ctx context.Context) ([]models.InvoiceSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.number, c.name, i.total, i.status, i.due_date
		 FROM invoices i
		 JOIN clients c ON c.id = i.client_id
		 ORDER BY i.created_at DESC, i.number DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var summaries []models.InvoiceSummary
	for rows.Next() {
		var sum models.InvoiceSummary
		var total string
		if err := rows.Scan(&sum.ID, &sum.Number, &sum.ClientName, &total, &sum.Status, &sum.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan invoice summary: %w", err)
		}
		if sum.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse total: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return summaries, nil
}

// MarkInvoicePaid transitions an invoice from pending to paid.
func (s *SQLiteStore) MarkInvoicePaid(ctx context.Context, invoiceID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET status = ? WHERE id = ?",
		string(models.StatusPaid), invoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// isNumberConflict reports whether err is a uniqueness violation on the
// invoice number.
func isNumberConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: invoices.number")
}
