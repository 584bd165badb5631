package billing

import (
	"time"

	"github.com/google/uuid"
)

// OrderLockAudit records that an order was linked to an invoice.
// Rows are append-only; the invoice status captured at lock time tells a
// draft-time link apart from a final lock.
type OrderLockAudit struct {
	ID            uuid.UUID     `json:"id"`
	OrderID       uuid.UUID     `json:"order_id"`
	InvoiceID     uuid.UUID     `json:"invoice_id"`
	LockedBy      string        `json:"locked_by"`
	InvoiceStatus InvoiceStatus `json:"invoice_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewOrderLockAudits builds one audit row per linked order
func NewOrderLockAudits(invoice *Invoice, orderIDs []uuid.UUID, lockedBy string) []*OrderLockAudit {
	now := time.Now()
	audits := make([]*OrderLockAudit, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		audits = append(audits, &OrderLockAudit{
			ID:            uuid.New(),
			OrderID:       orderID,
			InvoiceID:     invoice.ID,
			LockedBy:      lockedBy,
			InvoiceStatus: invoice.Status,
			CreatedAt:     now,
		})
	}
	return audits
}
