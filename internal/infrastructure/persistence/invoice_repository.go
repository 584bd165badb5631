package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindMonthly returns the monthly invoice for a client and period
func (r *GormInvoiceRepository) FindMonthly(ctx context.Context, clientID string, month, year int) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND billing_month = ? AND billing_year = ? AND type = ?",
			clientID, month, year, billing.InvoiceTypeMonthly).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient lists a client's invoices. The default order is newest billing period first.
func (r *GormInvoiceRepository) FindByClient(ctx context.Context, clientID string, filter shared.Filter) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	query := r.clientScope(ctx, clientID, filter).Order(invoiceOrderClause(filter.OrderBy, filter.OrderDir))
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for i := range rows {
		invoices = append(invoices, *rows[i].ToDomain())
	}
	return invoices, nil
}

// CountByClient counts a client's invoices, honouring the status filter
func (r *GormInvoiceRepository) CountByClient(ctx context.Context, clientID string, filter shared.Filter) (int64, error) {
	var count int64
	err := r.clientScope(ctx, clientID, filter).Count(&count).Error
	return count, err
}

func (r *GormInvoiceRepository) clientScope(ctx context.Context, clientID string, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("client_id = ?", clientID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

// Create inserts a new invoice, mapping a unique index violation to billing.ErrDuplicateInvoice
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return billing.ErrDuplicateInvoice
		}
		return err
	}
	invoice.CreatedAt = model.CreatedAt
	invoice.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes an invoice by ID
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
