package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for persisting and querying invoices
type InvoiceRepository interface {
	// FindMonthly returns the monthly invoice for a client and period, or shared.ErrNotFound
	FindMonthly(ctx context.Context, clientID string, month, year int) (*Invoice, error)

	// FindByID retrieves an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByClient lists a client's invoices, newest billing period first
	FindByClient(ctx context.Context, clientID string, filter shared.Filter) ([]Invoice, error)

	// CountByClient counts a client's invoices matching the filter's status, ignoring pagination
	CountByClient(ctx context.Context, clientID string, filter shared.Filter) (int64, error)

	// Create inserts a new invoice.
	// Returns ErrDuplicateInvoice when the (client, month, year, type) unique index rejects the row.
	Create(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice. Only used to compensate a failed generation.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LockAuditRepository persists the append-only order lock audit trail
type LockAuditRepository interface {
	// CreateBatch inserts audit rows in a single statement
	CreateBatch(ctx context.Context, audits []*OrderLockAudit) error

	// FindByOrder returns an order's audit history, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderLockAudit, error)
}

// GenerationLock guards a (client, month, year) against concurrent generation.
// It is a fast path only; the invoices unique index remains authoritative.
type GenerationLock interface {
	// Acquire returns a release func when the lock was obtained, or ok=false if it is held elsewhere
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// GenerationLockKey builds the lock key for a client and period
func GenerationLockKey(clientID string, period BillingPeriod) string {
	return "invoice-generation:" + clientID + ":" + period.String()
}
