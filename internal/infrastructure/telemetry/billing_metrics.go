// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BillingMetrics tracks invoice generation outcomes, billed amounts and saga compensations.
type BillingMetrics struct {
	generationsTotal   *Counter
	generationDuration *Histogram
	invoicedCents      *Counter
	ordersLinked       *Counter
	compensations      *Counter
	auditFailures      *Counter
}

// NewBillingMetrics creates the billing instruments on the given meter.
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BillingMetrics{}
	var err error

	if bm.generationsTotal, err = NewCounter(meter,
		"wms_invoice_generations_total",
		"Invoice generation attempts by outcome",
		"{generations}",
	); err != nil {
		return nil, err
	}

	if bm.generationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "wms_invoice_generation_duration_seconds",
		Description: "Duration of invoice generation",
		Unit:        "s",
		Boundaries:  GenerationDurationBuckets,
	}); err != nil {
		return nil, err
	}

	if bm.invoicedCents, err = NewCounter(meter,
		"wms_invoice_amount_cents_total",
		"Total invoiced amount in cents",
		"{cents}",
	); err != nil {
		return nil, err
	}

	if bm.ordersLinked, err = NewCounter(meter,
		"wms_invoice_orders_linked_total",
		"Orders linked to generated invoices",
		"{orders}",
	); err != nil {
		return nil, err
	}

	if bm.compensations, err = NewCounter(meter,
		"wms_invoice_compensations_total",
		"Invoices deleted to compensate a failed generation",
		"{invoices}",
	); err != nil {
		return nil, err
	}

	if bm.auditFailures, err = NewCounter(meter,
		"wms_order_lock_audit_failures_total",
		"Generations whose lock audit rows could not be written",
		"{failures}",
	); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOutcome records one generation attempt. reason is empty unless the outcome is "skipped".
func (bm *BillingMetrics) RecordOutcome(ctx context.Context, outcome, reason string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{AttrOutcome.String(outcome)}
	if reason != "" {
		attrs = append(attrs, AttrReason.String(reason))
	}
	bm.generationsTotal.Inc(ctx, attrs...)
	bm.generationDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
}

// RecordInvoice records a persisted invoice's amount and linked order count.
func (bm *BillingMetrics) RecordInvoice(ctx context.Context, status string, amount decimal.Decimal, orders int) {
	attr := AttrStatus.String(status)
	bm.invoicedCents.Add(ctx, amount.Shift(2).Round(0).IntPart(), attr)
	bm.ordersLinked.Add(ctx, int64(orders), attr)
}

// RecordCompensation records a compensating invoice delete.
func (bm *BillingMetrics) RecordCompensation(ctx context.Context) {
	bm.compensations.Inc(ctx)
}

// RecordAuditFailure records a lost lock audit batch.
func (bm *BillingMetrics) RecordAuditFailure(ctx context.Context) {
	bm.auditFailures.Inc(ctx)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
