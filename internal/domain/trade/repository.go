package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// ErrOrderLinkMismatch is returned when a bulk link did not update every targeted order
var ErrOrderLinkMismatch = shared.NewDomainError("ORDER_LINK_MISMATCH", "Not every order could be linked to the invoice")

// OrderRepository defines the billing-facing interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindFulfilledByClient returns a client's orders in a billable status,
	// ordered by creation time. Fulfilment dates are not filtered here.
	FindFulfilledByClient(ctx context.Context, clientID string) ([]Order, error)

	// FindItems returns an order's items joined with product SKU, name and category
	FindItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)

	// LinkToInvoice sets invoice_id and the legacy invoice_number on every order in one transaction.
	// Either all orders are linked or none are; a partial update returns ErrOrderLinkMismatch.
	LinkToInvoice(ctx context.Context, orderIDs []uuid.UUID, invoiceID uuid.UUID, invoiceNumber string) error
}
