package billing

import "github.com/wms/backend/internal/domain/shared"

var (
	// ErrDuplicateInvoice is returned when a monthly invoice already exists for the client and period
	ErrDuplicateInvoice = shared.NewDomainError("DUPLICATE_INVOICE", "Invoice already exists for this client and billing period")
	// ErrGenerationInProgress is returned when another generation holds the lock for the same period
	ErrGenerationInProgress = shared.NewDomainError("GENERATION_IN_PROGRESS", "Invoice generation already in progress for this client and billing period")
)
