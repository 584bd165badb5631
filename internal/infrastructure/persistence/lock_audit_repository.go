package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLockAuditRepository implements billing.LockAuditRepository using GORM
type GormLockAuditRepository struct {
	db *gorm.DB
}

// NewGormLockAuditRepository creates a new GormLockAuditRepository
func NewGormLockAuditRepository(db *gorm.DB) *GormLockAuditRepository {
	return &GormLockAuditRepository{db: db}
}

// CreateBatch inserts all audit rows in a single INSERT
func (r *GormLockAuditRepository) CreateBatch(ctx context.Context, audits []*billing.OrderLockAudit) error {
	if len(audits) == 0 {
		return nil
	}
	rows := make([]*models.OrderLockAuditModel, 0, len(audits))
	for _, a := range audits {
		rows = append(rows, models.OrderLockAuditModelFromDomain(a))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByOrder returns the audit trail of an order, oldest first
func (r *GormLockAuditRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]billing.OrderLockAudit, error) {
	var rows []models.OrderLockAuditModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	audits := make([]billing.OrderLockAudit, 0, len(rows))
	for i := range rows {
		audits = append(audits, *rows[i].ToDomain())
	}
	return audits, nil
}

var _ billing.LockAuditRepository = (*GormLockAuditRepository)(nil)
