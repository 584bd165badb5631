// Package billing provides the domain model for client invoicing in the warehouse backend.
//
// This package implements the monthly billing bounded context, which is responsible for:
//   - Deriving the UTC billing period of a calendar month
//   - Pricing fulfilled orders with the tiered per-unit rate card
//   - Assembling monthly invoices and their line items
//   - Recording the order lock audit trail written when orders are linked to an invoice
//
// Key Aggregates:
//   - Invoice: One bill for one client and one billing period
//
// Value Objects:
//   - BillingPeriod: The inclusive [start, end] UTC window of a month
//   - RateCard: Base and additional-unit rates used to price an order
//   - LineItem / ChargeDetail: Embedded per-order and per-SKU charges
//
// The billing domain integrates with:
//   - Trade domain: Orders and order items are the source of billable units
package billing
