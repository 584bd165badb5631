package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillingPeriod(t *testing.T) {
	t.Run("derives utc month boundaries", func(t *testing.T) {
		period, err := NewBillingPeriod(3, 2026)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), period.Start)
		assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), period.End)
		assert.Equal(t, "2026-03", period.String())
	})

	t.Run("handles leap february", func(t *testing.T) {
		period, err := NewBillingPeriod(2, 2024)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), period.End)
	})

	t.Run("handles december rollover", func(t *testing.T) {
		period, err := NewBillingPeriod(12, 2025)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), period.End)
	})

	t.Run("rejects month out of range", func(t *testing.T) {
		_, err := NewBillingPeriod(0, 2026)
		assert.Error(t, err)

		_, err = NewBillingPeriod(13, 2026)
		assert.Error(t, err)
	})

	t.Run("rejects implausible year", func(t *testing.T) {
		_, err := NewBillingPeriod(1, 1999)
		assert.Error(t, err)

		_, err = NewBillingPeriod(1, 2101)
		assert.Error(t, err)
	})
}

func TestBillingPeriod_Contains(t *testing.T) {
	period, err := NewBillingPeriod(3, 2026)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"one second before start", period.Start.Add(-time.Second), false},
		{"exactly at start", period.Start, true},
		{"one second after start", period.Start.Add(time.Second), true},
		{"exactly at end", period.End, true},
		{"within final second", period.End.Add(500 * time.Millisecond), true},
		{"at 23:59:59.500 on the last day", time.Date(2026, 3, 31, 23, 59, 59, 500_000_000, time.UTC), true},
		{"last nanosecond of the month", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), true},
		{"first instant of next month", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), false},
		{"one second after end", period.End.Add(time.Second), false},
		{"non utc instant inside period", time.Date(2026, 3, 31, 20, 0, 0, 0, time.FixedZone("UTC-3", -3*3600)), true},
		{"non utc instant after period", time.Date(2026, 3, 31, 22, 0, 0, 0, time.FixedZone("UTC-3", -3*3600)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, period.Contains(tt.at))
		})
	}
}

func TestBillingPeriod_DueDate(t *testing.T) {
	t.Run("adds thirty days to period end", func(t *testing.T) {
		period, _ := NewBillingPeriod(3, 2026)

		assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), period.DueDate(30))
	})

	t.Run("truncates to a date", func(t *testing.T) {
		period, _ := NewBillingPeriod(1, 2025)
		due := period.DueDate(30)

		assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), due)
		assert.Zero(t, due.Hour())
		assert.Zero(t, due.Minute())
		assert.Zero(t, due.Second())
	})
}
