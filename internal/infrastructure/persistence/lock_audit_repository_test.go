package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/billing"
)

func TestGormLockAuditRepository(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormLockAuditRepository(db)
	ctx := context.Background()

	orderA, orderB := uuid.New(), uuid.New()

	draft := newTestInvoice(t, "acme", 1, 2026, "2.50")
	draft.Status = billing.InvoiceStatusDraft
	require.NoError(t, repo.CreateBatch(ctx, billing.NewOrderLockAudits(draft, []uuid.UUID{orderA, orderB}, "ops")))

	sent := newTestInvoice(t, "acme", 2, 2026, "2.50")
	require.NoError(t, repo.CreateBatch(ctx, billing.NewOrderLockAudits(sent, []uuid.UUID{orderA}, "scheduler")))

	require.NoError(t, repo.CreateBatch(ctx, nil))

	history, err := repo.FindByOrder(ctx, orderA)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, draft.ID, history[0].InvoiceID)
	assert.Equal(t, billing.InvoiceStatusDraft, history[0].InvoiceStatus)
	assert.Equal(t, "ops", history[0].LockedBy)
	assert.Equal(t, sent.ID, history[1].InvoiceID)
	assert.Equal(t, billing.InvoiceStatusSent, history[1].InvoiceStatus)

	history, err = repo.FindByOrder(ctx, orderB)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	history, err = repo.FindByOrder(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, history)
}
