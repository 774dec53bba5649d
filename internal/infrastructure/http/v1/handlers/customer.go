package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quotero/internal/core/apperror"
	"quotero/internal/core/id"
	"quotero/internal/domain"
	"quotero/internal/domain/catalogs/customer"
	"quotero/internal/infrastructure/http/v1/dto"
	"quotero/internal/infrastructure/http/v1/middleware"
)

// CustomerHandler handles HTTP requests for the customer catalog.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /catalogs/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.Create(ctx, entity); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromCustomer(entity))
}

// Update handles PUT /catalogs/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(entity)

	if err := h.service.Update(ctx, entity); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(entity))
}

// GetByID handles GET /catalogs/customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entity, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(entity))
}

// GetByCode handles GET /catalogs/customers/by-code/:code
func (h *CustomerHandler) GetByCode(c *gin.Context) {
	ctx := c.Request.Context()

	entity, err := h.service.GetByCode(ctx, c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(entity))
}

// FindByTaxID handles GET /catalogs/customers/by-tax-id/:taxId
func (h *CustomerHandler) FindByTaxID(c *gin.Context) {
	ctx := c.Request.Context()

	entity, err := h.service.FindByTaxID(ctx, c.Param("taxId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(entity))
}

// List handles GET /catalogs/customers
func (h *CustomerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"
	if parentID := c.Query("parentId"); parentID != "" {
		filter.ParentID = &parentID
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CustomerResponse, len(result.Items))
	for i := range result.Items {
		items[i] = dto.FromCustomer(result.Items[i])
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Tree handles GET /catalogs/customers/tree
// Optional rootId query narrows the tree to one group's subtree.
func (h *CustomerHandler) Tree(c *gin.Context) {
	ctx := c.Request.Context()

	var rootID *id.ID
	if raw := c.Query("rootId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid rootId format"))
			return
		}
		rootID = &parsed
	}

	entities, err := h.service.GetTree(ctx, rootID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CustomerResponse, len(entities))
	for i := range entities {
		items[i] = dto.FromCustomer(entities[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Path handles GET /catalogs/customers/:id/path
// Returns the chain of groups from the root down to the customer.
func (h *CustomerHandler) Path(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entities, err := h.service.GetPath(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CustomerResponse, len(entities))
	for i := range entities {
		items[i] = dto.FromCustomer(entities[i])
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Delete handles DELETE /catalogs/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, entityID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetDeletionMark handles POST /catalogs/customers/:id/deletion-mark
func (h *CustomerHandler) SetDeletionMark(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetDeletionMarkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetDeletionMark(ctx, entityID, req.Marked); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "deletion mark updated")
}

// RegisterRoutes registers customer catalog routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/catalogs/customers")
	g.GET("", h.List)
	g.GET("/tree", h.Tree)
	g.GET("/:id", h.GetByID)
	g.GET("/:id/path", h.Path)
	g.GET("/by-code/:code", h.GetByCode)
	g.GET("/by-tax-id/:taxId", h.FindByTaxID)
	g.POST("", middleware.RequireRole("manager", "staff"), h.Create)
	g.PUT("/:id", middleware.RequireRole("manager", "staff"), h.Update)
	g.POST("/:id/deletion-mark", middleware.RequireRole("manager"), h.SetDeletionMark)
	g.DELETE("/:id", middleware.RequireRole("admin"), h.Delete)
}
