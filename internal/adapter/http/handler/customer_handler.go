package handler

import (
	"strconv"

	"github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/dto"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"
	"github.com/sanjaypunani/order-managment-sub001/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	customerSvc ports.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerSvc ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerSvc: customerSvc}
}

// Create handles POST /api/v1/customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customer, err := h.customerSvc.Create(c.Request.Context(), ports.CreateCustomerRequest{
		CountryCode:  req.CountryCode,
		MobileNumber: req.MobileNumber,
		FlatNumber:   req.FlatNumber,
		SocietyName:  req.SocietyName,
		CustomerName: req.CustomerName,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created", customer)
}

// GetByID handles GET /api/v1/customers/:id.
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	customer, err := h.customerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", customer)
}

// GetByMobile handles GET /api/v1/customers/mobile/:mobile.
func (h *CustomerHandler) GetByMobile(c *gin.Context) {
	customer, err := h.customerSvc.GetByMobile(c.Request.Context(), c.Param("mobile"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", customer)
}

// List handles GET /api/v1/customers.
func (h *CustomerHandler) List(c *gin.Context) {
	params := ports.CustomerListParams{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}

	customers, total, err := h.customerSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", dto.NewListResponse(customers, total, params.Page, params.PageSize))
}

// Update handles PUT /api/v1/customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customer, err := h.customerSvc.Update(c.Request.Context(), id, ports.UpdateCustomerRequest{
		CountryCode:  req.CountryCode,
		MobileNumber: req.MobileNumber,
		FlatNumber:   req.FlatNumber,
		SocietyName:  req.SocietyName,
		CustomerName: req.CustomerName,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated", customer)
}

// Delete handles DELETE /api/v1/customers/:id.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	if err := h.customerSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer deleted", nil)
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
