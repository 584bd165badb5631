package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
)

// InvoiceService serves read-only invoice queries
type InvoiceService struct {
	invoices billing.InvoiceRepository
	audits   billing.LockAuditRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoices billing.InvoiceRepository, audits billing.LockAuditRepository) *InvoiceService {
	return &InvoiceService{invoices: invoices, audits: audits}
}

// GetInvoice returns a single invoice with its line items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

// ListClientInvoices returns one page of a client's invoices, newest period first by default
func (s *InvoiceService) ListClientInvoices(ctx context.Context, clientID string, filter InvoiceListFilter) (shared.Paginated[InvoiceListItemResponse], error) {
	if strings.TrimSpace(clientID) == "" {
		return shared.Paginated[InvoiceListItemResponse]{}, shared.ErrInvalidInput
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	invoices, err := s.invoices.FindByClient(ctx, clientID, domainFilter)
	if err != nil {
		return shared.Paginated[InvoiceListItemResponse]{}, err
	}
	total, err := s.invoices.CountByClient(ctx, clientID, domainFilter)
	if err != nil {
		return shared.Paginated[InvoiceListItemResponse]{}, err
	}

	items := make([]InvoiceListItemResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, ToInvoiceListItemResponse(&invoices[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListOrderLockHistory returns the lock audit trail of an order, oldest first
func (s *InvoiceService) ListOrderLockHistory(ctx context.Context, orderID uuid.UUID) ([]billing.OrderLockAudit, error) {
	return s.audits.FindByOrder(ctx, orderID)
}
