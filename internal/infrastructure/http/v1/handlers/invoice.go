package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/security"
	"quotero/internal/domain/invoice"
	"quotero/internal/infrastructure/http/v1/dto"
	"quotero/internal/infrastructure/http/v1/middleware"
)

// InvoiceHandler handles HTTP requests for invoice documents.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Derive handles POST /documents/invoices/derive
// Issues an invoice from an accepted quotation.
func (h *InvoiceHandler) Derive(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DeriveInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quotationID, err := id.Parse(req.QuotationID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid quotation id"))
		return
	}

	doc, err := h.service.Derive(ctx, quotationID, req.ToOptions(), security.ActorFromContext(ctx))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInvoice(doc))
}

// GetByID handles GET /documents/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(doc))
}

// GetByQuotation handles GET /documents/invoices/by-quotation/:id
func (h *InvoiceHandler) GetByQuotation(c *gin.Context) {
	ctx := c.Request.Context()

	quotationID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByQuotation(ctx, quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(doc))
}

// List handles GET /documents/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListInvoicesQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.InvoiceResponse, len(result.Items))
	for i := range result.Items {
		items[i] = dto.FromInvoice(result.Items[i])
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ChangeStatus handles POST /documents/invoices/:id/status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ChangeInvoiceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	to := invoice.Status(req.Status)
	if !to.IsValid() {
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", req.Status))
		return
	}

	doc, err := h.service.ChangeStatus(ctx, docID, to, security.ActorFromContext(ctx))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(doc))
}

// RegisterRoutes registers invoice routes.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/documents/invoices")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.GET("/by-quotation/:id", h.GetByQuotation)
	g.POST("/derive", middleware.RequireRole("manager"), h.Derive)
	g.POST("/:id/status", middleware.RequireRole("manager"), h.ChangeStatus)
}
