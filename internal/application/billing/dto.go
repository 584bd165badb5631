package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/billing"
)

// InvoiceListFilter selects a page of a client's invoices
type InvoiceListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=draft sent partial paid"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceListItemResponse is an invoice without its line items
type InvoiceListItemResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	ClientID      string                `json:"client_id"`
	BillingMonth  int                   `json:"billing_month"`
	BillingYear   int                   `json:"billing_year"`
	OrderCount    int                   `json:"order_count"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	DueDate       time.Time             `json:"due_date"`
	Status        billing.InvoiceStatus `json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ToInvoiceListItemResponse converts a domain invoice to a list item
func ToInvoiceListItemResponse(inv *billing.Invoice) InvoiceListItemResponse {
	return InvoiceListItemResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		BillingMonth:  inv.BillingMonth,
		BillingYear:   inv.BillingYear,
		OrderCount:    inv.OrderCount,
		TotalAmount:   inv.TotalAmount,
		BalanceDue:    inv.BalanceDue,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt,
	}
}
