package handler

import (
	"github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/dto"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"
	"github.com/sanjaypunani/order-managment-sub001/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	productSvc ports.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productSvc ports.ProductService) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.Error(c, apperror.Validation("invalid price"))
		return
	}
	stock := decimal.Zero
	if req.StockQuantity != "" {
		if stock, err = decimal.NewFromString(req.StockQuantity); err != nil {
			response.Error(c, apperror.Validation("invalid stock quantity"))
			return
		}
	}

	product, err := h.productSvc.Create(c.Request.Context(), ports.CreateProductRequest{
		Name:          req.Name,
		NameGujarati:  req.NameGujarati,
		Category:      req.Category,
		Unit:          req.Unit,
		Price:         price,
		StockQuantity: stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created", product)
}

// GetByID handles GET /api/v1/products/:id.
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	product, err := h.productSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", product)
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
	params := ports.ProductListParams{
		Category:   c.Query("category"),
		ActiveOnly: c.Query("active") == "true",
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 50),
	}

	products, total, err := h.productSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", dto.NewListResponse(products, total, params.Page, params.PageSize))
}

// Update handles PUT /api/v1/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	update := ports.UpdateProductRequest{
		Name:         req.Name,
		NameGujarati: req.NameGujarati,
		Category:     req.Category,
		Unit:         req.Unit,
		IsActive:     req.IsActive,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			response.Error(c, apperror.Validation("invalid price"))
			return
		}
		update.Price = &price
	}
	if req.StockQuantity != nil {
		stock, err := decimal.NewFromString(*req.StockQuantity)
		if err != nil {
			response.Error(c, apperror.Validation("invalid stock quantity"))
			return
		}
		update.StockQuantity = &stock
	}

	product, err := h.productSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated", product)
}

// Delete handles DELETE /api/v1/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid product id"))
		return
	}

	if err := h.productSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted", nil)
}

// ToggleCategory handles POST /api/v1/products/categories/:category/toggle.
func (h *ProductHandler) ToggleCategory(c *gin.Context) {
	var req dto.ToggleCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	category := c.Param("category")
	if category == "" {
		category = req.Category
	}

	affected, err := h.productSvc.ToggleCategory(c.Request.Context(), category, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated", gin.H{"affected": affected})
}

// BulkUpdate handles POST /api/v1/products/bulk-update.
func (h *ProductHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid product id"))
			return
		}
		ids = append(ids, id)
	}

	affected, err := h.productSvc.BulkUpdateField(c.Request.Context(), ids, req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products updated", gin.H{"affected": affected})
}
