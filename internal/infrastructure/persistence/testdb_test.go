package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupBillingTestDB opens an in-memory SQLite database with the billing schema.
// A single connection keeps every statement on the same in-memory database.
func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.InvoiceModel{},
		&models.OrderLockAuditModel{},
	))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, clientID string, status trade.OrderStatus, createdAt time.Time) *models.OrderModel {
	t.Helper()
	dispatched := createdAt.Add(time.Hour)
	m := &models.OrderModel{
		BaseModel:    models.BaseModel{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		OrderNumber:  "ORD-" + uuid.NewString()[:8],
		ClientID:     clientID,
		Status:       status,
		DispatchedAt: &dispatched,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedProduct(t *testing.T, db *gorm.DB, sku, name, category string) *models.ProductModel {
	t.Helper()
	now := time.Now().UTC()
	m := &models.ProductModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		SKU:       sku,
		Name:      name,
		Category:  category,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedItem(t *testing.T, db *gorm.DB, orderID, productID uuid.UUID, qty int64, createdAt time.Time) *models.OrderItemModel {
	t.Helper()
	m := &models.OrderItemModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func newTestInvoice(t *testing.T, clientID string, month, year int, total string) *billing.Invoice {
	t.Helper()
	period, err := billing.NewBillingPeriod(month, year)
	require.NoError(t, err)

	amount := decimal.RequireFromString(total)
	inv, err := billing.NewMonthlyInvoice(billing.MonthlyInvoiceParams{
		ClientID: clientID,
		Period:   period,
		LineItems: billing.LineItems{{
			Description: "Order fulfilment",
			Quantity:    1,
			UnitPrice:   amount,
			Amount:      amount,
			OrderID:     uuid.New(),
		}},
		TotalAmount:      amount,
		CreatedBy:        "ops",
		PaymentTermsDays: 30,
	})
	require.NoError(t, err)
	return inv
}
