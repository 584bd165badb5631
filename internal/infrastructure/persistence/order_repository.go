package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindFulfilledByClient returns a client's dispatched or delivered orders, oldest first
func (r *GormOrderRepository) FindFulfilledByClient(ctx context.Context, clientID string) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND status IN ?", clientID, trade.BillableStatuses).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, nil
}

// FindItems returns an order's items with product details. Items whose product
// row is missing are still returned with empty SKU, name and category.
func (r *GormOrderRepository) FindItems(ctx context.Context, orderID uuid.UUID) ([]trade.OrderItem, error) {
	var rows []models.OrderItemRow
	if err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.id, oi.order_id, oi.product_id, oi.quantity, " +
			"COALESCE(p.sku, '') AS sku, COALESCE(p.name, '') AS product_name, COALESCE(p.category, '') AS category").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.created_at ASC, oi.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]trade.OrderItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items, nil
}

// LinkToInvoice links every order to the invoice in one transaction. An order
// already linked to a different invoice makes the whole update roll back.
func (r *GormOrderRepository) LinkToInvoice(ctx context.Context, orderIDs []uuid.UUID, invoiceID uuid.UUID, invoiceNumber string) error {
	ids := dedupeIDs(orderIDs)
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id IN ? AND (invoice_id IS NULL OR invoice_id = ?)", ids, invoiceID).
			Updates(map[string]any{
				"invoice_id":     invoiceID,
				"invoice_number": invoiceNumber,
				"updated_at":     time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("%w: updated %d of %d orders", trade.ErrOrderLinkMismatch, result.RowsAffected, len(ids))
		}
		return nil
	})
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
