package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// RegisterPoolMetrics exports connection pool gauges read from stats on every
// collection. Unregister the returned registration to stop observing.
func RegisterPoolMetrics(meter metric.Meter, stats func() sql.DBStats) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("wms_db_pool_open_connections",
		metric.WithDescription("Established connections, in use and idle"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wms_db_pool_open_connections gauge: %w", err)
	}
	inUse, err := meter.Int64ObservableGauge("wms_db_pool_in_use",
		metric.WithDescription("Connections currently in use"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wms_db_pool_in_use gauge: %w", err)
	}
	idle, err := meter.Int64ObservableGauge("wms_db_pool_idle",
		metric.WithDescription("Idle connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wms_db_pool_idle gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("wms_db_pool_wait_count",
		metric.WithDescription("Total connections waited for"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wms_db_pool_wait_count counter: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(open, int64(s.OpenConnections))
		o.ObserveInt64(inUse, int64(s.InUse))
		o.ObserveInt64(idle, int64(s.Idle))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, open, inUse, idle, waits)
}
