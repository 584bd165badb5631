package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/trade"
)

// pricedOrders is the result of pricing a period's eligible orders
type pricedOrders struct {
	lineItems   billing.LineItems
	totalAmount decimal.Decimal
	totalUnits  int64
	// every eligible order, including zero-unit ones; all of them get linked
	orderIDs []uuid.UUID
}

// priceOrders prices each order with the rate card. items[i] belongs to orders[i].
// Line items keep the order sequence; the per-SKU breakdown of the whole
// invoice rides on the first line item.
func priceOrders(card billing.RateCard, orders []trade.Order, items [][]trade.OrderItem) pricedOrders {
	p := pricedOrders{
		lineItems:   billing.LineItems{},
		totalAmount: decimal.Zero,
		orderIDs:    make([]uuid.UUID, 0, len(orders)),
	}
	var details []billing.ChargeDetail

	for i := range orders {
		order := orders[i]
		p.orderIDs = append(p.orderIDs, order.ID)

		units := trade.TotalUnits(items[i])
		if units <= 0 {
			continue
		}

		charge := card.OrderCharge(units)
		rate := billing.UnitRate(charge, units)
		p.totalAmount = p.totalAmount.Add(charge)
		p.totalUnits += units

		for _, item := range items[i] {
			details = append(details, billing.ChargeDetail{
				SKU:         item.SKU,
				ProductName: item.ProductName,
				Category:    item.Category,
				OrderDate:   order.CreatedAt.UTC(),
				Quantity:    item.Quantity,
				Rate:        rate,
				Amount:      billing.Round2(rate.Mul(decimal.NewFromInt(item.Quantity))),
			})
		}

		p.lineItems = append(p.lineItems, billing.LineItem{
			Description: lineDescription(order, units),
			Quantity:    units,
			UnitPrice:   rate,
			Amount:      billing.Round2(charge),
			OrderID:     order.ID,
		})
	}

	if len(p.lineItems) > 0 {
		p.lineItems[0].Details = details
	}
	return p
}

func lineDescription(order trade.Order, units int64) string {
	ref := order.OrderNumber
	if ref == "" {
		ref = order.ID.String()
	}
	noun := "units"
	if units == 1 {
		noun = "unit"
	}
	return fmt.Sprintf("Order %s fulfilment (%d %s)", ref, units, noun)
}
