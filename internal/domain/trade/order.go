package trade

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the fulfilment status of a client order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// BillableStatuses are the statuses whose orders can appear on an invoice
var BillableStatuses = []OrderStatus{OrderStatusDelivered, OrderStatusDispatched}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusDispatched, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsBillable returns true if orders in this status can be invoiced
func (s OrderStatus) IsBillable() bool {
	return s == OrderStatusDelivered || s == OrderStatusDispatched
}

// Order is a client's fulfilment order as seen by billing
type Order struct {
	ID            uuid.UUID
	OrderNumber   string
	ClientID      string
	Status        OrderStatus
	DispatchedAt  *time.Time
	DeliveredAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	InvoiceID     *uuid.UUID
	InvoiceNumber string // legacy free-text link kept in sync with InvoiceID
}

// FulfilledAt returns the delivery time if present, else the dispatch time.
// ok is false when the order has neither.
func (o *Order) FulfilledAt() (at time.Time, ok bool) {
	if o.DeliveredAt != nil {
		return *o.DeliveredAt, true
	}
	if o.DispatchedAt != nil {
		return *o.DispatchedAt, true
	}
	return time.Time{}, false
}

// IsInvoiced returns true if the order is linked to an invoice
func (o *Order) IsInvoiced() bool {
	return o.InvoiceID != nil && *o.InvoiceID != uuid.Nil
}

// OrderItem is one product line of an order, joined with its product
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Quantity    int64
	SKU         string
	ProductName string
	Category    string
}

// TotalUnits sums the quantities of the given items
func TotalUnits(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
