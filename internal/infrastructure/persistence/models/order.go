package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/trade"
)

// OrderModel is the persistence model for client orders
type OrderModel struct {
	BaseModel
	OrderNumber   string            `gorm:"type:varchar(50);not null;index"`
	ClientID      string            `gorm:"type:varchar(64);not null;index:idx_order_client_status,priority:1"`
	Status        trade.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_order_client_status,priority:2"`
	DispatchedAt  *time.Time
	DeliveredAt   *time.Time
	InvoiceID     *uuid.UUID `gorm:"type:uuid;index"`
	InvoiceNumber string     `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		ID:            m.ID,
		OrderNumber:   m.OrderNumber,
		ClientID:      m.ClientID,
		Status:        m.Status,
		DispatchedAt:  m.DispatchedAt,
		DeliveredAt:   m.DeliveredAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	return &OrderModel{
		BaseModel: BaseModel{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		},
		OrderNumber:   o.OrderNumber,
		ClientID:      o.ClientID,
		Status:        o.Status,
		DispatchedAt:  o.DispatchedAt,
		DeliveredAt:   o.DeliveredAt,
		InvoiceID:     o.InvoiceID,
		InvoiceNumber: o.InvoiceNumber,
	}
}

// OrderItemModel is the persistence model for order lines
type OrderItemModel struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ProductModel is the persistence model for the product columns billing reads
type ProductModel struct {
	BaseModel
	SKU      string `gorm:"column:sku;type:varchar(100);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	Category string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// OrderItemRow is the scan target of the order_items/products join
type OrderItemRow struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Quantity    int64
	SKU         string `gorm:"column:sku"`
	ProductName string
	Category    string
}

// ToDomain converts the joined row to a domain OrderItem
func (r *OrderItemRow) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:          r.ID,
		OrderID:     r.OrderID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		SKU:         r.SKU,
		ProductName: r.ProductName,
		Category:    r.Category,
	}
}
