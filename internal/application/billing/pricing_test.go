package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/trade"
)

func TestPriceOrders(t *testing.T) {
	card := billing.DefaultRateCard()

	t.Run("charges follow the rate card", func(t *testing.T) {
		one := deliveredOrder("ORD-1", ts("2026-03-02T10:00:00Z"))
		five := deliveredOrder("ORD-5", ts("2026-03-03T10:00:00Z"))

		p := priceOrders(card, []trade.Order{one, five}, [][]trade.OrderItem{
			itemsOf(one, 1),
			itemsOf(five, 2, 3),
		})

		require.Len(t, p.lineItems, 2)
		assert.True(t, p.lineItems[0].Amount.Equal(dec("2.50")))
		assert.True(t, p.lineItems[1].Amount.Equal(dec("7.50")))
		assert.True(t, p.lineItems[1].UnitPrice.Equal(dec("1.50")))
		assert.True(t, p.totalAmount.Equal(dec("10.00")))
		assert.Equal(t, int64(6), p.totalUnits)
		assert.Equal(t, []uuid.UUID{one.ID, five.ID}, p.orderIDs)
		assert.Equal(t, "Order ORD-1 fulfilment (1 unit)", p.lineItems[0].Description)
		assert.Equal(t, "Order ORD-5 fulfilment (5 units)", p.lineItems[1].Description)
	})

	t.Run("details carry the order date", func(t *testing.T) {
		o := deliveredOrder("ORD-1", ts("2026-03-02T10:00:00Z"))

		p := priceOrders(card, []trade.Order{o}, [][]trade.OrderItem{itemsOf(o, 4)})

		require.Len(t, p.lineItems[0].Details, 1)
		d := p.lineItems[0].Details[0]
		assert.True(t, o.CreatedAt.Equal(d.OrderDate))
		assert.Equal(t, int64(4), d.Quantity)
		assert.True(t, d.Rate.Equal(dec("1.56")))
		assert.True(t, d.Amount.Equal(dec("6.24")))
	})

	t.Run("zero unit orders are linked but not billed", func(t *testing.T) {
		o := deliveredOrder("ORD-0", ts("2026-03-02T10:00:00Z"))

		p := priceOrders(card, []trade.Order{o}, [][]trade.OrderItem{nil})

		assert.Empty(t, p.lineItems)
		assert.True(t, p.totalAmount.IsZero())
		assert.Equal(t, []uuid.UUID{o.ID}, p.orderIDs)
	})

	t.Run("description falls back to the order id", func(t *testing.T) {
		o := deliveredOrder("", ts("2026-03-02T10:00:00Z"))

		p := priceOrders(card, []trade.Order{o}, [][]trade.OrderItem{itemsOf(o, 2)})

		assert.Contains(t, p.lineItems[0].Description, o.ID.String())
	})
}
