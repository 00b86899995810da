package api

import (
	"github.com/MarsCodex3/Lawclone/internal/models"
)

// UserDetails is the invoice issuer's profile as submitted in the form.
type UserDetails struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone"`
	Logo    string `json:"logo"`
}

// BillTo is the bill-to party as submitted in the form.
type BillTo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// InvoiceDetails carries the invoice metadata fields.
type InvoiceDetails struct {
	IssueDate string `json:"issueDate" validate:"required"`
	DueDate   string `json:"dueDate" validate:"required"`
	Frequency string `json:"frequency" validate:"omitempty,oneof=once daily weekly monthly yearly"`
}

// LineItemRequest is one submitted line item. Duration and rate are optional;
// when both are numeric the amount is recomputed as duration*rate.
type LineItemRequest struct {
	ActivityType string `json:"activityType" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Duration     string `json:"duration"`
	Rate         string `json:"rate"`
	Amount       string `json:"amount" validate:"required"`
}

// CreateInvoiceRequest is the body of POST /api/invoices.
type CreateInvoiceRequest struct {
	UserDetails    UserDetails       `json:"userDetails"`
	BillTo         BillTo            `json:"billTo"`
	InvoiceDetails InvoiceDetails    `json:"invoiceDetails"`
	Items          []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreatePaymentRequest is the body of POST /api/create-payment.
type CreatePaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	InvoiceID   string  `json:"invoiceId" validate:"required"`
	Description string  `json:"description"`
}

// InvoiceRef is the creation response payload: the new invoice's identifiers.
type InvoiceRef struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// LineItemResponse mirrors a stored line item.
type LineItemResponse struct {
	ID           string `json:"id"`
	ActivityType string `json:"activityType"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	Duration     string `json:"duration,omitempty"`
	Rate         string `json:"rate,omitempty"`
	Amount       string `json:"amount"`
}

// InvoiceResponse is the full invoice shape consumed by the display page.
type InvoiceResponse struct {
	ID             string             `json:"id"`
	Number         string             `json:"number"`
	UserDetails    UserDetails        `json:"userDetails"`
	BillTo         BillTo             `json:"billTo"`
	InvoiceDetails InvoiceDetails     `json:"invoiceDetails"`
	Items          []LineItemResponse `json:"items"`
	Subtotal       string             `json:"subtotal"`
	Tax            string             `json:"tax"`
	Total          string             `json:"total"`
	Status         string             `json:"status"`
}

// InvoiceSummaryResponse is one row of the invoice listing.
type InvoiceSummaryResponse struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	ClientName string `json:"clientName"`
	Total      string `json:"total"`
	Status     string `json:"status"`
	DueDate    string `json:"dueDate"`
}

// toInvoiceResponse maps a domain invoice to the API shape.
func toInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = LineItemResponse{
			ID:           item.ID,
			ActivityType: item.ActivityType,
			Date:         item.Date,
			Description:  item.Description,
			Duration:     item.Duration,
			Rate:         item.Rate,
			Amount:       item.Amount.String(),
		}
	}

	return InvoiceResponse{
		ID:     inv.ID,
		Number: inv.Number,
		UserDetails: UserDetails{
			Name:    inv.Owner.Name,
			Email:   inv.Owner.Email,
			Company: inv.Owner.Company,
			Address: inv.Owner.Address,
			Phone:   inv.Owner.Phone,
			Logo:    inv.Owner.Logo,
		},
		BillTo: BillTo{
			Name:    inv.Client.Name,
			Email:   inv.Client.Email,
			Address: inv.Client.Address,
		},
		InvoiceDetails: InvoiceDetails{
			IssueDate: inv.IssueDate,
			DueDate:   inv.DueDate,
			Frequency: string(inv.Frequency),
		},
		Items:    items,
		Subtotal: inv.Subtotal.String(),
		Tax:      inv.Tax.String(),
		Total:    inv.Total.String(),
		Status:   string(inv.Status),
	}
}
