// Package api exposes the REST surface of the invoicing service.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/MarsCodex3/Lawclone/internal/models"
	"github.com/MarsCodex3/Lawclone/internal/payment"
	"github.com/MarsCodex3/Lawclone/internal/service"
	"github.com/MarsCodex3/Lawclone/internal/storage"
)

// maxWebhookBody caps webhook payload reads. Stripe's own limit is 64KB.
const maxWebhookBody = 1 << 16

// Server holds the handlers for the invoice API.
type Server struct {
	invoices *service.InvoiceService
	payments *service.PaymentService
	webhooks payment.WebhookProcessor
	validate *validator.Validate
}

// NewServer creates a Server backed by the given services.
func NewServer(invoices *service.InvoiceService, payments *service.PaymentService, webhooks payment.WebhookProcessor) *Server {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report field errors under their JSON names, not Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		invoices: invoices,
		payments: payments,
		webhooks: webhooks,
		validate: validate,
	}
}

// Register mounts all API routes on the router.
func (s *Server) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/invoices", s.handleCreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", s.handleGetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/create-payment", s.handleCreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/webhooks/stripe", s.handleStripeWebhook).Methods(http.MethodPost)
}

// handleCreateInvoice validates the submitted form and creates the invoice.
func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := s.validateInvoice(&req); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	in := service.InvoiceInput{
		Owner: models.Owner{
			Name:    req.UserDetails.Name,
			Email:   req.UserDetails.Email,
			Company: req.UserDetails.Company,
			Address: req.UserDetails.Address,
			Phone:   req.UserDetails.Phone,
			Logo:    req.UserDetails.Logo,
		},
		Client: models.Client{
			Name:    req.BillTo.Name,
			Email:   req.BillTo.Email,
			Address: req.BillTo.Address,
		},
		IssueDate: req.InvoiceDetails.IssueDate,
		DueDate:   req.InvoiceDetails.DueDate,
		Frequency: models.Frequency(req.InvoiceDetails.Frequency),
		Items:     make([]service.LineItemInput, len(req.Items)),
	}
	for i, item := range req.Items {
		in.Items[i] = service.LineItemInput{
			ActivityType: item.ActivityType,
			Date:         item.Date,
			Description:  item.Description,
			Duration:     item.Duration,
			Rate:         item.Rate,
			Amount:       item.Amount,
		}
	}

	inv, err := s.invoices.Create(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"invoice": InvoiceRef{ID: inv.ID, Number: inv.Number},
	})
}

// handleGetInvoice returns the full invoice shape for the display page.
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := mux.Vars(r)["id"]

	inv, err := s.invoices.Get(r.Context(), invoiceID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load invoice")
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// handleListInvoices returns summaries for the dashboard.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.invoices.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}

	out := make([]InvoiceSummaryResponse, len(summaries))
	for i, sum := range summaries {
		out[i] = InvoiceSummaryResponse{
			ID:         sum.ID,
			Number:     sum.Number,
			ClientName: sum.ClientName,
			Total:      sum.Total.String(),
			Status:     string(sum.Status),
			DueDate:    sum.DueDate,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"invoices": out})
}

// handleCreatePayment creates a hosted-checkout session and returns the
// redirect URL.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(&req); err != nil {
		writeFieldErrors(w, fieldMessages(err))
		return
	}

	url, err := s.payments.CreateSession(r.Context(), decimal.NewFromFloat(req.Amount), req.InvoiceID, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating payment session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleStripeWebhook verifies and applies a provider notification.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	event, err := s.webhooks.VerifyAndParse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("Webhook rejected", "error", err)
		writeError(w, http.StatusBadRequest, "invalid webhook")
		return
	}

	if err := s.payments.HandleEvent(r.Context(), event); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// validateInvoice runs struct validation plus the amount sign check, and
// flattens the result into field -> message form suitable for the form UI.
func (s *Server) validateInvoice(req *CreateInvoiceRequest) map[string]string {
	fields := map[string]string{}

	if err := s.validate.Struct(req); err != nil {
		for k, v := range fieldMessages(err) {
			fields[k] = v
		}
	}

	// Unparseable amounts silently default to zero, but a value that does
	// parse must not be negative.
	for i, item := range req.Items {
		if item.Amount == "" {
			continue
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(item.Amount)); err == nil && d.IsNegative() {
			fields[fmt.Sprintf("items[%d].amount", i)] = "must be a non-negative number"
		}
	}

	return fields
}

// fieldMessages converts validator errors into field -> message pairs keyed
// by the JSON-ish path of the offending field.
func fieldMessages(err error) map[string]string {
	fields := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = messageFor(fe)
	}
	return fields
}

// fieldPath strips the root struct name:
// "CreateInvoiceRequest.items[0].description" -> "items[0].description".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "at least one item is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "invalid value"
	}
}
