// Package bootstrap wires the billing stack from configuration. The HTTP
// server and the invoicectl CLI share it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	billingapp "github.com/wms/backend/internal/application/billing"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LockKeyPrefix namespaces generation locks in Redis
const LockKeyPrefix = "wms:"

// Billing is the wired billing stack
type Billing struct {
	DB        *persistence.Database
	Generator *billingapp.InvoiceGenerator
	Queries   *billingapp.InvoiceService

	// Checks are dependency probes keyed by name, for health endpoints
	Checks map[string]func(ctx context.Context) error

	redis  *redis.Client
	logger *zap.Logger
}

// NewBilling opens the database and the configured generation lock backend
// and builds the generator and the query service. meter may be nil.
func NewBilling(ctx context.Context, cfg *config.Config, log *zap.Logger, meter metric.Meter) (*Billing, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	b := &Billing{
		DB:     db,
		Checks: map[string]func(ctx context.Context) error{"database": db.Ping},
		logger: log,
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		b.Close()
		return nil, fmt.Errorf("register database tracing: %w", err)
	}

	invoices := persistence.NewGormInvoiceRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	audits := persistence.NewGormLockAuditRepository(db.DB)

	b.Generator = billingapp.NewInvoiceGenerator(invoices, orders, audits, billingapp.GeneratorConfig{
		RateCard: billing.RateCard{
			BaseRate:           cfg.Billing.BaseRate,
			AdditionalUnitRate: cfg.Billing.AdditionalUnitRate,
		},
		PaymentTermsDays:     cfg.Billing.PaymentTermsDays,
		ItemFetchConcurrency: cfg.Billing.ItemFetchConcurrency,
		LockTTL:              cfg.Billing.LockTTL,
	}, log)
	b.Queries = billingapp.NewInvoiceService(invoices, audits)

	lock, err := b.generationLock(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	if lock != nil {
		b.Generator.SetGenerationLock(lock)
	}

	if meter != nil {
		metrics, err := telemetry.NewBillingMetrics(meter)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("create billing metrics: %w", err)
		}
		b.Generator.SetBillingMetrics(metrics)

		if _, err := telemetry.RegisterPoolMetrics(meter, b.DB.PoolStats); err != nil {
			b.Close()
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}

	return b, nil
}

func (b *Billing) generationLock(ctx context.Context, cfg *config.Config) (billing.GenerationLock, error) {
	switch cfg.Billing.LockBackend {
	case config.LockBackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.redis = client
		b.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.logger.Info("Generation lock backed by Redis", zap.String("addr", cfg.Redis.Addr()))
		return cache.NewRedisGenerationLock(client, LockKeyPrefix), nil
	case config.LockBackendMemory:
		b.logger.Info("Generation lock is process local")
		return cache.NewInMemoryGenerationLock(), nil
	default:
		b.logger.Warn("Generation lock disabled; the invoice unique index is the only duplicate guard")
		return nil, nil
	}
}

// Close releases the Redis client and the database pool
func (b *Billing) Close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			b.logger.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			b.logger.Error("Error closing database", zap.Error(err))
		}
	}
}

// Telemetry holds the trace and metric providers
type Telemetry struct {
	Tracer *telemetry.TracerProvider
	Meter  *telemetry.MeterProvider
	Logs   *telemetry.LoggerProvider
}

// NewTelemetry starts the OTLP trace, metric and log providers. All of them
// are no-ops when telemetry is disabled.
func NewTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Telemetry, error) {
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create tracer provider: %w", err)
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("create meter provider: %w", err)
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		_ = mp.Shutdown(ctx)
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("create logger provider: %w", err)
	}

	return &Telemetry{Tracer: tp, Meter: mp, Logs: lp}, nil
}

// BridgeLogger tees log into the collector at the configured log level
func (t *Telemetry) BridgeLogger(log *zap.Logger, cfg *config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return t.Logs.Bridge(log, level)
}

// Shutdown flushes all providers
func (t *Telemetry) Shutdown(ctx context.Context) {
	_ = t.Logs.Shutdown(ctx)
	_ = t.Tracer.Shutdown(ctx)
	_ = t.Meter.Shutdown(ctx)
}

// NewLogger builds the application logger from the log section
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Env)), nil
}
