package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/core/security"
	"quotero/internal/domain/quotation"
	"quotero/internal/infrastructure/http/v1/dto"
	"quotero/internal/infrastructure/http/v1/middleware"
)

// QuotationHandler handles HTTP requests for quotation documents.
type QuotationHandler struct {
	*BaseHandler
	service *quotation.Service
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(base *BaseHandler, service *quotation.Service) *QuotationHandler {
	return &QuotationHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /documents/quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc.OwnerUserID = h.GetUserID(c)

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuotation(doc))
}

// Update handles PUT /documents/quotations/:id
func (h *QuotationHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(doc); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(doc))
}

// GetByID handles GET /documents/quotations/:id
func (h *QuotationHandler) GetByID(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromQuotation(doc))
}

// GetByNumber handles GET /documents/quotations/by-number/:number
func (h *QuotationHandler) GetByNumber(c *gin.Context) {
	ctx := c.Request.Context()

	doc, err := h.service.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(doc))
}

// List handles GET /documents/quotations
func (h *QuotationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuotationsQuery
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

	items := make([]*dto.QuotationResponse, len(result.Items))
	for i := range result.Items {
		items[i] = dto.FromQuotation(result.Items[i])
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ChangeStatus handles POST /documents/quotations/:id/status
func (h *QuotationHandler) ChangeStatus(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ChangeQuotationStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	to := quotation.Status(req.Status)
	if !to.IsValid() {
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", req.Status))
		return
	}

	doc, err := h.service.ChangeStatus(ctx, docID, to, security.ActorFromContext(ctx))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(doc))
}

// Copy handles POST /documents/quotations/:id/copy
func (h *QuotationHandler) Copy(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.Copy(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuotation(doc))
}

// Delete handles DELETE /documents/quotations/:id
func (h *QuotationHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExpireSweep handles POST /documents/quotations/expire-sweep
// Marks all sent quotations past their validity date as expired.
func (h *QuotationHandler) ExpireSweep(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.service.MarkExpired(ctx, time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": count})
}

// RegisterRoutes registers quotation routes.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/documents/quotations")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.GET("/by-number/:number", h.GetByNumber)
	g.POST("", middleware.RequireRole("manager", "staff"), h.Create)
	g.PUT("/:id", middleware.RequireRole("manager", "staff"), h.Update)
	g.POST("/:id/status", middleware.RequireRole("manager", "staff"), h.ChangeStatus)
	g.POST("/:id/copy", middleware.RequireRole("manager", "staff"), h.Copy)
	g.DELETE("/:id", middleware.RequireRole("manager"), h.Delete)
	g.POST("/expire-sweep", middleware.RequireRole("admin"), h.ExpireSweep)
}
