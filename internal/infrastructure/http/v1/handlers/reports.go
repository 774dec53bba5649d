package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quotero/internal/domain/reports"
	"quotero/internal/infrastructure/http/v1/dto"
	"quotero/internal/infrastructure/http/v1/middleware"
)

// ReportsHandler handles analytical report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// SalesSummary handles GET /reports/sales-summary
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SalesSummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.GetSalesSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSalesSummary(report))
}

// InvoiceAging handles GET /reports/invoice-aging
func (h *ReportsHandler) InvoiceAging(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.InvoiceAgingRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.GetInvoiceAging(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoiceAging(report))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reports", middleware.RequireRole("manager"))
	g.GET("/sales-summary", h.SalesSummary)
	g.GET("/invoice-aging", h.InvoiceAging)
}
