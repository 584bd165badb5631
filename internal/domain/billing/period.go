package billing

import (
	"fmt"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

const (
	MinBillingYear = 2000
	MaxBillingYear = 2100
)

// BillingPeriod is the calendar month (UTC) a monthly invoice aggregates.
// End is the last second of the month (23:59:59 on the last day).
type BillingPeriod struct {
	Month int       `json:"month"`
	Year  int       `json:"year"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewBillingPeriod derives the period for the given month and year
func NewBillingPeriod(month, year int) (BillingPeriod, error) {
	if month < 1 || month > 12 {
		return BillingPeriod{}, shared.NewDomainError("INVALID_BILLING_MONTH", fmt.Sprintf("Billing month must be between 1 and 12, got %d", month))
	}
	if year < MinBillingYear || year > MaxBillingYear {
		return BillingPeriod{}, shared.NewDomainError("INVALID_BILLING_YEAR", fmt.Sprintf("Billing year must be between %d and %d, got %d", MinBillingYear, MaxBillingYear, year))
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	lastDay := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, time.UTC)

	return BillingPeriod{
		Month: month,
		Year:  year,
		Start: start,
		End:   lastDay,
	}, nil
}

// next returns the first instant of the following month
func (p BillingPeriod) next() time.Time {
	return p.Start.AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the period, inclusive of both ends.
// Instants within the final second after End also belong to this month so that
// consecutive periods leave no gap.
func (p BillingPeriod) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start) && t.Before(p.next())
}

// String returns the period as YYYY-MM
func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// DueDate returns the period end plus the payment terms, truncated to a date
func (p BillingPeriod) DueDate(paymentTermsDays int) time.Time {
	due := p.End.AddDate(0, 0, paymentTermsDays)
	return time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
}
