package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/billing"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// idx_invoice_client_period is the authoritative one-invoice-per-period guarantee.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;index"`
	ClientID      string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_invoice_client_period,priority:1"`
	BillingMonth  int                   `gorm:"not null;uniqueIndex:idx_invoice_client_period,priority:2"`
	BillingYear   int                   `gorm:"not null;uniqueIndex:idx_invoice_client_period,priority:3"`
	Type          billing.InvoiceType   `gorm:"type:varchar(20);not null;default:'monthly';uniqueIndex:idx_invoice_client_period,priority:4"`
	PeriodStart   time.Time             `gorm:"not null"`
	PeriodEnd     time.Time             `gorm:"not null"`
	OrderCount    int                   `gorm:"not null;default:0"`
	LineItems     billing.LineItems     `gorm:"type:jsonb;default:'[]'"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	BalanceDue    decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DueDate       time.Time             `gorm:"not null"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	CreatedBy     string                `gorm:"type:varchar(64)"`
	Notes         string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	lineItems := m.LineItems
	if lineItems == nil {
		lineItems = billing.LineItems{}
	}
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		ClientID:          m.ClientID,
		Type:              m.Type,
		BillingMonth:      m.BillingMonth,
		BillingYear:       m.BillingYear,
		PeriodStart:       m.PeriodStart.UTC(),
		PeriodEnd:         m.PeriodEnd.UTC(),
		OrderCount:        m.OrderCount,
		LineItems:         lineItems,
		Subtotal:          m.Subtotal,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		BalanceDue:        m.BalanceDue,
		DueDate:           m.DueDate.UTC(),
		Status:            m.Status,
		CreatedBy:         m.CreatedBy,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.ClientID = inv.ClientID
	m.Type = inv.Type
	m.BillingMonth = inv.BillingMonth
	m.BillingYear = inv.BillingYear
	m.PeriodStart = inv.PeriodStart
	m.PeriodEnd = inv.PeriodEnd
	m.OrderCount = inv.OrderCount
	m.LineItems = inv.LineItems
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.BalanceDue = inv.BalanceDue
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.CreatedBy = inv.CreatedBy
	m.Notes = inv.Notes
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// OrderLockAuditModel is the persistence model for the append-only lock audit trail
type OrderLockAuditModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	LockedBy      string                `gorm:"type:varchar(64)"`
	InvoiceStatus billing.InvoiceStatus `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLockAuditModel) TableName() string {
	return "order_lock_audit"
}

// ToDomain converts the persistence model to a domain OrderLockAudit
func (m *OrderLockAuditModel) ToDomain() *billing.OrderLockAudit {
	return &billing.OrderLockAudit{
		ID:            m.ID,
		OrderID:       m.OrderID,
		InvoiceID:     m.InvoiceID,
		LockedBy:      m.LockedBy,
		InvoiceStatus: m.InvoiceStatus,
		CreatedAt:     m.CreatedAt,
	}
}

// OrderLockAuditModelFromDomain creates a persistence model from a domain OrderLockAudit
func OrderLockAuditModelFromDomain(a *billing.OrderLockAudit) *OrderLockAuditModel {
	return &OrderLockAuditModel{
		ID:            a.ID,
		OrderID:       a.OrderID,
		InvoiceID:     a.InvoiceID,
		LockedBy:      a.LockedBy,
		InvoiceStatus: a.InvoiceStatus,
		CreatedAt:     a.CreatedAt,
	}
}
