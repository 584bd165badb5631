package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultItemFetchConcurrency bounds concurrent order item reads when unset
const DefaultItemFetchConcurrency = 8

// DefaultLockTTL is how long a generation lock is held when unset
const DefaultLockTTL = 2 * time.Minute

// GeneratorConfig holds pricing and runtime settings for the generator
type GeneratorConfig struct {
	RateCard             billing.RateCard
	PaymentTermsDays     int
	ItemFetchConcurrency int
	LockTTL              time.Duration
}

// DefaultGeneratorConfig returns the standard rate card with 30 day terms
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		RateCard:             billing.DefaultRateCard(),
		PaymentTermsDays:     30,
		ItemFetchConcurrency: DefaultItemFetchConcurrency,
		LockTTL:              DefaultLockTTL,
	}
}

// GenerateInput identifies the invoice to generate and who asked for it
type GenerateInput struct {
	ClientID string
	Month    int
	Year     int
	ActorID  string
	IsDraft  bool
	// Automatic marks scheduler-driven runs; it only changes the invoice notes
	Automatic bool
}

// Validate checks the input and returns the billing period it designates.
// Errors wrap shared.ErrInvalidInput.
func (in GenerateInput) Validate() (billing.BillingPeriod, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return billing.BillingPeriod{}, fmt.Errorf("%w: client id is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return billing.BillingPeriod{}, fmt.Errorf("%w: actor id is required", shared.ErrInvalidInput)
	}
	period, err := billing.NewBillingPeriod(in.Month, in.Year)
	if err != nil {
		return billing.BillingPeriod{}, fmt.Errorf("%w: %s", shared.ErrInvalidInput, err.Error())
	}
	return period, nil
}

// InvoiceGenerator produces the monthly invoice for one client and period
type InvoiceGenerator struct {
	invoices billing.InvoiceRepository
	orders   trade.OrderRepository
	audits   billing.LockAuditRepository
	lock     billing.GenerationLock
	metrics  *telemetry.BillingMetrics
	logger   *zap.Logger
	cfg      GeneratorConfig
}

// NewInvoiceGenerator creates a generator. Zero config values fall back to defaults.
func NewInvoiceGenerator(
	invoices billing.InvoiceRepository,
	orders trade.OrderRepository,
	audits billing.LockAuditRepository,
	cfg GeneratorConfig,
	log *zap.Logger,
) *InvoiceGenerator {
	if cfg.ItemFetchConcurrency < 1 {
		cfg.ItemFetchConcurrency = DefaultItemFetchConcurrency
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceGenerator{
		invoices: invoices,
		orders:   orders,
		audits:   audits,
		cfg:      cfg,
		logger:   log.Named("invoice_generator"),
	}
}

// SetGenerationLock installs the in-flight guard. Without one, only the
// invoices unique index prevents concurrent duplicates.
func (g *InvoiceGenerator) SetGenerationLock(lock billing.GenerationLock) {
	g.lock = lock
}

// SetBillingMetrics sets the billing metrics recorder
func (g *InvoiceGenerator) SetBillingMetrics(m *telemetry.BillingMetrics) {
	g.metrics = m
}

// Generate runs one generation. It never returns nil.
func (g *InvoiceGenerator) Generate(ctx context.Context, in GenerateInput) (result Result) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice_generator", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrClientID, in.ClientID),
		telemetry.WithAttribute(telemetry.SpanAttrBillingPeriod, fmt.Sprintf("%04d-%02d", in.Year, in.Month)),
	)
	log := logger.Enrich(ctx, g.logger).With(
		zap.String("client_id", in.ClientID),
		zap.Int("month", in.Month),
		zap.Int("year", in.Year),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic during invoice generation", zap.Any("panic", r), zap.Stack("stack"))
			result = &Failure{Message: "Unexpected error during invoice generation", Err: fmt.Errorf("panic: %v", r)}
		}
		g.observe(ctx, log, result, time.Since(start))
		outcome, reason := OutcomeName(result)
		telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, outcome, "reason", reason)
		switch r := result.(type) {
		case *Failure:
			telemetry.RecordError(span, r)
		case *Success:
			telemetry.SetAttributes(span,
				telemetry.SpanAttrInvoiceID, r.Invoice.ID.String(),
				telemetry.SpanAttrInvoiceNumber, r.Invoice.InvoiceNumber,
				telemetry.SpanAttrOrderCount, r.Stats.OrderCount,
				telemetry.SpanAttrTotalUnits, r.Stats.TotalUnits,
				telemetry.SpanAttrAmount, r.Stats.TotalAmount.StringFixed(2),
			)
			telemetry.SetOK(span)
		default:
			telemetry.SetOK(span)
		}
		span.End()
	}()

	period, err := in.Validate()
	if err != nil {
		return &Failure{Message: "Invalid generation request", Err: err}
	}

	if g.lock != nil {
		release, ok, err := g.lock.Acquire(ctx, billing.GenerationLockKey(in.ClientID, period), g.cfg.LockTTL)
		switch {
		case err != nil:
			log.Warn("Generation lock unavailable, relying on unique index", zap.Error(err))
		case !ok:
			// the holder may still fail and roll back, so the caller has to retry
			return &Failure{Message: "Invoice generation already in progress for " + period.String() + ", retry later", Err: billing.ErrGenerationInProgress}
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warn("Failed to release generation lock", zap.Error(err))
				}
			}()
		}
	}

	existing, err := g.invoices.FindMonthly(ctx, in.ClientID, period.Month, period.Year)
	switch {
	case err == nil:
		return &Skipped{
			Reason:   SkipDuplicate,
			Message:  fmt.Sprintf("Invoice %s already exists for %s", existing.InvoiceNumber, period),
			Existing: existing,
		}
	case !errors.Is(err, shared.ErrNotFound):
		return &Failure{Message: "Failed to check for an existing invoice", Err: err}
	}

	orders, err := g.eligibleOrders(ctx, log, in.ClientID, period)
	if err != nil {
		return &Failure{Message: "Failed to load fulfilled orders", Err: err}
	}
	if len(orders) == 0 {
		return &Skipped{Reason: SkipNoOrders, Message: fmt.Sprintf("No fulfilled orders for %s", period)}
	}

	items, err := g.fetchItems(ctx, orders)
	if err != nil {
		return &Failure{Message: "Failed to load order items", Err: err}
	}

	priced := priceOrders(g.cfg.RateCard, orders, items)
	if priced.totalAmount.IsZero() {
		return &Skipped{
			Reason:  SkipZeroAmount,
			Message: fmt.Sprintf("%d fulfilled orders for %s have no billable units", len(orders), period),
		}
	}

	invoice, err := billing.NewMonthlyInvoice(billing.MonthlyInvoiceParams{
		ClientID:         in.ClientID,
		Period:           period,
		LineItems:        priced.lineItems,
		TotalAmount:      priced.totalAmount,
		CreatedBy:        in.ActorID,
		IsDraft:          in.IsDraft,
		Automatic:        in.Automatic,
		PaymentTermsDays: g.cfg.PaymentTermsDays,
	})
	if err != nil {
		return &Failure{Message: "Failed to assemble invoice", Err: err}
	}

	return g.persist(ctx, log, in, invoice, priced)
}

// eligibleOrders returns the client's orders fulfilled inside the period, in
// repository order. Orders already linked to an invoice are left out.
func (g *InvoiceGenerator) eligibleOrders(ctx context.Context, log *zap.Logger, clientID string, period billing.BillingPeriod) ([]trade.Order, error) {
	candidates, err := g.orders.FindFulfilledByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	eligible := make([]trade.Order, 0, len(candidates))
	alreadyInvoiced := 0
	for _, order := range candidates {
		at, ok := order.FulfilledAt()
		if !ok || !period.Contains(at) {
			continue
		}
		if order.IsInvoiced() {
			alreadyInvoiced++
			continue
		}
		eligible = append(eligible, order)
	}

	if alreadyInvoiced > 0 {
		log.Warn("Skipping orders already linked to another invoice", zap.Int("orders", alreadyInvoiced))
	}
	return eligible, nil
}

// fetchItems loads every order's items concurrently. The result is indexed like orders.
func (g *InvoiceGenerator) fetchItems(ctx context.Context, orders []trade.Order) ([][]trade.OrderItem, error) {
	items := make([][]trade.OrderItem, len(orders))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.ItemFetchConcurrency)
	for i := range orders {
		eg.Go(func() error {
			orderItems, err := g.orders.FindItems(egCtx, orders[i].ID)
			if err != nil {
				return fmt.Errorf("order %s: %w", orders[i].ID, err)
			}
			items[i] = orderItems
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// persist inserts the invoice, links its orders and writes the lock audit.
// Once the insert succeeds, every failure path deletes the invoice again.
func (g *InvoiceGenerator) persist(ctx context.Context, log *zap.Logger, in GenerateInput, invoice *billing.Invoice, priced pricedOrders) (result Result) {
	log = log.With(zap.String("invoice_id", invoice.ID.String()), zap.String("invoice_number", invoice.InvoiceNumber))

	if err := g.invoices.Create(ctx, invoice); err != nil {
		if !errors.Is(err, billing.ErrDuplicateInvoice) {
			return &Failure{Message: "Failed to create invoice", Err: err}
		}
		skipped := &Skipped{
			Reason:  SkipDuplicate,
			Message: fmt.Sprintf("Invoice already exists for %02d/%d", in.Month, in.Year),
		}
		if winner, findErr := g.invoices.FindMonthly(ctx, in.ClientID, in.Month, in.Year); findErr == nil {
			skipped.Existing = winner
			skipped.Message = fmt.Sprintf("Invoice %s already exists for %02d/%d", winner.InvoiceNumber, in.Month, in.Year)
		} else {
			log.Warn("Lost insert race but could not read the winning invoice", zap.Error(findErr))
		}
		return skipped
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic after invoice insert", zap.Any("panic", r), zap.Stack("stack"))
			g.compensate(ctx, log, invoice)
			result = &Failure{
				Message: fmt.Sprintf("Unexpected error while persisting invoice %s; invoice rolled back", invoice.InvoiceNumber),
				Err:     fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if err := g.orders.LinkToInvoice(ctx, priced.orderIDs, invoice.ID, invoice.InvoiceNumber); err != nil {
		log.Error("Failed to link orders to invoice", zap.Int("orders", len(priced.orderIDs)), zap.Error(err))
		g.compensate(ctx, log, invoice)
		return &Failure{
			Message: fmt.Sprintf("Failed to link orders to invoice %s; invoice rolled back", invoice.InvoiceNumber),
			Err:     err,
		}
	}

	audits := billing.NewOrderLockAudits(invoice, priced.orderIDs, in.ActorID)
	if err := g.audits.CreateBatch(ctx, audits); err != nil {
		log.Error("Failed to write order lock audit; orders remain linked",
			zap.Bool("needs_reconciliation", true),
			zap.Int("orders", len(audits)),
			zap.Error(err),
		)
		if g.metrics != nil {
			g.metrics.RecordAuditFailure(ctx)
		}
	}

	if g.metrics != nil {
		g.metrics.RecordInvoice(ctx, invoice.Status.String(), invoice.TotalAmount, len(priced.orderIDs))
	}

	return &Success{
		Invoice: invoice,
		Stats: Stats{
			OrderCount:   len(priced.lineItems),
			TotalUnits:   priced.totalUnits,
			TotalAmount:  invoice.TotalAmount,
			OrdersLocked: true,
		},
	}
}

// compensate deletes an invoice whose generation did not complete. It runs
// even when ctx is already cancelled.
func (g *InvoiceGenerator) compensate(ctx context.Context, log *zap.Logger, invoice *billing.Invoice) {
	if g.metrics != nil {
		g.metrics.RecordCompensation(ctx)
	}
	if err := g.invoices.Delete(context.WithoutCancel(ctx), invoice.ID); err != nil {
		log.Error("Compensating invoice delete failed; orphan invoice needs manual cleanup",
			zap.Bool("needs_reconciliation", true),
			zap.Error(err),
		)
		return
	}
	log.Warn("Invoice rolled back")
}

func (g *InvoiceGenerator) observe(ctx context.Context, log *zap.Logger, result Result, elapsed time.Duration) {
	outcome, reason := OutcomeName(result)
	if g.metrics != nil {
		g.metrics.RecordOutcome(ctx, outcome, reason, elapsed)
	}

	fields := []zap.Field{zap.String("outcome", outcome), zap.Duration("elapsed", elapsed)}
	switch r := result.(type) {
	case *Success:
		log.Info("Invoice generated", append(fields,
			zap.String("invoice_number", r.Invoice.InvoiceNumber),
			zap.Int("order_count", r.Stats.OrderCount),
			zap.Int64("total_units", r.Stats.TotalUnits),
			zap.String("total_amount", r.Stats.TotalAmount.StringFixed(2)),
		)...)
	case *Skipped:
		log.Info("Invoice generation skipped", append(fields, zap.String("reason", reason), zap.String("message", r.Message))...)
	case *Failure:
		if errors.Is(r, billing.ErrGenerationInProgress) {
			log.Warn("Invoice generation deferred", append(fields, zap.String("message", r.Message))...)
			return
		}
		log.Error("Invoice generation failed", append(fields, zap.String("message", r.Message), zap.Error(r.Err))...)
	}
}
