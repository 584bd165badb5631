package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"billing_period": true,
	"total_amount":   true,
	"due_date":       true,
	"status":         true,
}

// invoiceOrderClause expands the virtual billing_period field to its two columns.
func invoiceOrderClause(orderBy, orderDir string) string {
	field := ValidateSortField(orderBy, InvoiceSortFields, "billing_period")
	dir := ValidateSortOrder(orderDir)
	if field == "billing_period" {
		return "billing_year " + dir + ", billing_month " + dir + ", id " + dir
	}
	return field + " " + dir + ", id " + dir
}
