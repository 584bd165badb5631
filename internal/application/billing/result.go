package billing

import (
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/billing"
)

// SkipReason explains why a generation wrote nothing
type SkipReason string

const (
	SkipDuplicate  SkipReason = "duplicate"
	SkipNoOrders   SkipReason = "no_orders"
	SkipZeroAmount SkipReason = "zero_amount"
)

// Result is the outcome of one generation: *Success, *Skipped or *Failure.
type Result interface {
	isResult()
}

// Stats summarises a successful generation
type Stats struct {
	OrderCount   int             `json:"order_count"`
	TotalUnits   int64           `json:"total_units"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	OrdersLocked bool            `json:"orders_locked"`
}

// Success means the invoice was persisted and its orders linked
type Success struct {
	Invoice *billing.Invoice
	Stats   Stats
}

// Skipped means there was nothing to do. Existing is set for duplicates when the
// stored invoice could be read.
type Skipped struct {
	Reason   SkipReason
	Message  string
	Existing *billing.Invoice
}

// Failure means generation stopped on an error. Any invoice inserted by this
// call has already been deleted, or deletion was attempted and logged.
type Failure struct {
	Message string
	Err     error
}

func (*Success) isResult() {}
func (*Skipped) isResult() {}
func (*Failure) isResult() {}

// Error implements error so a Failure can be returned or wrapped directly
func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return f.Message + ": " + f.Err.Error()
}

// Unwrap returns the underlying error
func (f *Failure) Unwrap() error {
	return f.Err
}

// Envelope is the caller-facing shape of a Result
type Envelope struct {
	Success bool             `json:"success"`
	Skipped bool             `json:"skipped,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	Message string           `json:"message"`
	Data    *billing.Invoice `json:"data,omitempty"`
	Stats   *Stats           `json:"stats,omitempty"`
}

// ResultEnvelope converts a Result to the envelope returned by the API and CLI
func ResultEnvelope(r Result) Envelope {
	switch v := r.(type) {
	case *Success:
		stats := v.Stats
		return Envelope{
			Success: true,
			Message: "Invoice " + v.Invoice.InvoiceNumber + " generated",
			Data:    v.Invoice,
			Stats:   &stats,
		}
	case *Skipped:
		return Envelope{
			Success: true,
			Skipped: true,
			Reason:  string(v.Reason),
			Message: v.Message,
			Data:    v.Existing,
		}
	case *Failure:
		// Err carries store details; it is logged, never returned
		return Envelope{Success: false, Message: v.Message}
	default:
		return Envelope{Success: false, Message: "unknown generation result"}
	}
}

// OutcomeName returns the metric label for a Result
func OutcomeName(r Result) (outcome, reason string) {
	switch v := r.(type) {
	case *Success:
		return "success", ""
	case *Skipped:
		return "skipped", string(v.Reason)
	default:
		return "failure", ""
	}
}
