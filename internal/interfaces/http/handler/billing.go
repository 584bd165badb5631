package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/wms/backend/internal/application/billing"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// InvoiceGenerator runs monthly invoice generation
type InvoiceGenerator interface {
	Generate(ctx context.Context, in billingapp.GenerateInput) billingapp.Result
}

// InvoiceQueries serves invoice reads
type InvoiceQueries interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error)
	ListClientInvoices(ctx context.Context, clientID string, filter billingapp.InvoiceListFilter) (shared.Paginated[billingapp.InvoiceListItemResponse], error)
	ListOrderLockHistory(ctx context.Context, orderID uuid.UUID) ([]billing.OrderLockAudit, error)
}

// BillingHandler exposes invoice generation and invoice queries
type BillingHandler struct {
	BaseHandler
	generator InvoiceGenerator
	queries   InvoiceQueries
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(generator InvoiceGenerator, queries InvoiceQueries) *BillingHandler {
	return &BillingHandler{generator: generator, queries: queries}
}

// RegisterRoutes mounts the billing routes under /billing
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/billing")
	g.POST("/invoices/generate", h.GenerateInvoice)
	g.GET("/invoices/:id", h.GetInvoice)
	g.GET("/clients/:client_id/invoices", h.ListClientInvoices)
	g.GET("/orders/:id/lock-history", h.GetOrderLockHistory)
}

// GenerateInvoiceRequest is the body of a generation request
type GenerateInvoiceRequest struct {
	ClientID string `json:"client_id" binding:"required,max=64"`
	Month    int    `json:"month" binding:"required,min=1,max=12"`
	Year     int    `json:"year" binding:"required,min=2000,max=2100"`
	IsDraft  bool   `json:"is_draft"`
}

// GenerateInvoice godoc
// @Summary      Generate a client's monthly invoice
// @Tags         billing
// @Param        X-User-ID header string true "Operator requesting the generation"
// @Success      201 {object} billingapp.Envelope "invoice generated"
// @Success      200 {object} billingapp.Envelope "skipped"
// @Failure      400 {object} billingapp.Envelope
// @Failure      409 {object} billingapp.Envelope
// @Failure      500 {object} billingapp.Envelope
// @Router       /billing/invoices/generate [post]
func (h *BillingHandler) GenerateInvoice(c *gin.Context) {
	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result := h.generator.Generate(c.Request.Context(), billingapp.GenerateInput{
		ClientID: strings.TrimSpace(req.ClientID),
		Month:    req.Month,
		Year:     req.Year,
		ActorID:  strings.TrimSpace(c.GetHeader(middleware.ActorHeader)),
		IsDraft:  req.IsDraft,
	})

	c.JSON(generationStatus(result), billingapp.ResultEnvelope(result))
}

func generationStatus(result billingapp.Result) int {
	switch r := result.(type) {
	case *billingapp.Success:
		return http.StatusCreated
	case *billingapp.Skipped:
		return http.StatusOK
	case *billingapp.Failure:
		if errors.Is(r, shared.ErrInvalidInput) {
			return http.StatusBadRequest
		}
		if errors.Is(r, billing.ErrGenerationInProgress) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// GetInvoice godoc
// @Summary      Get an invoice with its line items
// @Tags         billing
// @Router       /billing/invoices/{id} [get]
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidInput, "Invalid invoice ID format")
		return
	}

	invoice, err := h.queries.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListClientInvoices godoc
// @Summary      List a client's invoices, newest billing period first
// @Tags         billing
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size (max 100)"
// @Param        status    query string false "draft, sent, partial or paid"
// @Router       /billing/clients/{client_id}/invoices [get]
func (h *BillingHandler) ListClientInvoices(c *gin.Context) {
	var filter billingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.queries.ListClientInvoices(c.Request.Context(), c.Param("client_id"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// GetOrderLockHistory godoc
// @Summary      List the lock audit trail of an order
// @Tags         billing
// @Router       /billing/orders/{id}/lock-history [get]
func (h *BillingHandler) GetOrderLockHistory(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidInput, "Invalid order ID format")
		return
	}

	history, err := h.queries.ListOrderLockHistory(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
