package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"   // Generated for review, orders linked but not locked
	InvoiceStatusSent    InvoiceStatus = "sent"    // Issued to the client, linked orders are locked
	InvoiceStatusPartial InvoiceStatus = "partial" // Partially paid
	InvoiceStatusPaid    InvoiceStatus = "paid"    // Fully paid
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// LocksOrders returns true if orders linked to an invoice in this status are locked
func (s InvoiceStatus) LocksOrders() bool {
	return s != InvoiceStatusDraft
}

// InvoiceType distinguishes how an invoice was produced
type InvoiceType string

const (
	InvoiceTypeMonthly InvoiceType = "monthly"
)

// ChargeDetail is the per-SKU breakdown of an order charge
type ChargeDetail struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	OrderDate   time.Time       `json:"order_date"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// LineItem is the charge for one fulfilled order
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     uuid.UUID       `json:"order_id"`
	Details     []ChargeDetail  `json:"details,omitempty"`
}

// LineItems is a slice of LineItem that implements GORM Scanner/Valuer for JSONB storage
type LineItems []LineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Total returns the sum of the line item amounts
func (l LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// Invoice is one bill for one client and one billing period
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      string          `json:"client_id"`
	Type          InvoiceType     `json:"type"`
	BillingMonth  int             `json:"billing_month"`
	BillingYear   int             `json:"billing_year"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	OrderCount    int             `json:"order_count"`
	LineItems     LineItems       `json:"line_items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	DueDate       time.Time       `json:"due_date"`
	Status        InvoiceStatus   `json:"status"`
	CreatedBy     string          `json:"created_by"`
	Notes         string          `json:"notes"`
}

// MonthlyInvoiceParams carries everything needed to assemble a monthly invoice
type MonthlyInvoiceParams struct {
	ClientID         string
	Period           BillingPeriod
	LineItems        LineItems
	TotalAmount      decimal.Decimal
	CreatedBy        string
	IsDraft          bool
	Automatic        bool
	PaymentTermsDays int
}

// NewMonthlyInvoice assembles a monthly invoice from priced line items
func NewMonthlyInvoice(p MonthlyInvoiceParams) (*Invoice, error) {
	if strings.TrimSpace(p.ClientID) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if len(p.LineItems) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEMS", "Invoice must have at least one line item")
	}
	if !p.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}
	if p.PaymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}

	subtotal := Round2(p.TotalAmount)
	status := InvoiceStatusSent
	if p.IsDraft {
		status = InvoiceStatusDraft
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     InvoiceNumber(p.ClientID, p.Period),
		ClientID:          p.ClientID,
		Type:              InvoiceTypeMonthly,
		BillingMonth:      p.Period.Month,
		BillingYear:       p.Period.Year,
		PeriodStart:       p.Period.Start,
		PeriodEnd:         p.Period.End,
		OrderCount:        len(p.LineItems),
		LineItems:         p.LineItems,
		Subtotal:          subtotal,
		TaxAmount:         decimal.Zero,
		TotalAmount:       subtotal,
		BalanceDue:        subtotal,
		DueDate:           p.Period.DueDate(p.PaymentTermsDays),
		Status:            status,
		CreatedBy:         p.CreatedBy,
		Notes:             generationNotes(p.Period, p.Automatic),
	}
	return invoice, nil
}

// InvoiceNumber formats the human-readable monthly invoice number:
// INV-{YYYY}{MM}-{last six characters of the client ID, uppercased}
func InvoiceNumber(clientID string, period BillingPeriod) string {
	suffix := clientID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("INV-%04d%02d-%s", period.Year, period.Month, strings.ToUpper(suffix))
}

func generationNotes(period BillingPeriod, automatic bool) string {
	origin := "manually"
	if automatic {
		origin = "automatically"
	}
	return fmt.Sprintf("Monthly invoice for %s %d, generated %s",
		time.Month(period.Month).String(), period.Year, origin)
}

// LocksOrders returns true if the invoice's linked orders are locked
func (i *Invoice) LocksOrders() bool {
	return i.Status.LocksOrders()
}

var _ shared.AggregateRoot = (*Invoice)(nil)
