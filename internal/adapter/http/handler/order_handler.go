package handler

import (
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/dto"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"
	"github.com/sanjaypunani/order-managment-sub001/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orderSvc ports.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	items, err := parseOrderItems(req.Items)
	if err != nil {
		response.Error(c, err)
		return
	}

	discount := decimal.Zero
	if req.Discount != "" {
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			response.Error(c, apperror.Validation("invalid discount"))
			return
		}
	}

	order, err := h.orderSvc.Create(c.Request.Context(), ports.CreateOrderRequest{
		CustomerID: customerID,
		Items:      items,
		Discount:   discount,
		UseWallet:  req.UseWallet,
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created", order)
}

// GetByID handles GET /api/v1/orders/:id.
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	order, err := h.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", order)
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	params := ports.OrderListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}

	if raw := c.Query("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid customer id"))
			return
		}
		params.CustomerID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.OrderStatus(raw)
		params.Status = &status
	}
	var err error
	if params.From, err = queryDate(c, "from"); err != nil {
		response.Error(c, err)
		return
	}
	if params.To, err = queryDate(c, "to"); err != nil {
		response.Error(c, err)
		return
	}

	orders, total, err := h.orderSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", dto.NewListResponse(orders, total, params.Page, params.PageSize))
}

// Update handles PUT /api/v1/orders/:id.
func (h *OrderHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	update := ports.UpdateOrderRequest{
		UseWallet: req.UseWallet,
		Notes:     req.Notes,
	}
	if req.Items != nil {
		if update.Items, err = parseOrderItems(req.Items); err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.Discount != nil {
		discount, err := decimal.NewFromString(*req.Discount)
		if err != nil {
			response.Error(c, apperror.Validation("invalid discount"))
			return
		}
		update.Discount = &discount
	}

	order, err := h.orderSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order updated", order)
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.orderSvc.UpdateStatus(c.Request.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated", order)
}

// Delete handles DELETE /api/v1/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	if err := h.orderSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order deleted", nil)
}

func parseOrderItems(items []dto.OrderItemRequest) ([]ports.OrderItemInput, error) {
	out := make([]ports.OrderItemInput, 0, len(items))
	for _, it := range items {
		qty, err := decimal.NewFromString(it.Quantity)
		if err != nil {
			return nil, apperror.Validation("invalid item quantity")
		}
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, apperror.Validation("invalid item price")
		}
		input := ports.OrderItemInput{
			Name:     it.Name,
			Quantity: qty,
			Unit:     it.Unit,
			Price:    price,
		}
		if it.ProductID != nil {
			pid, err := uuid.Parse(*it.ProductID)
			if err != nil {
				return nil, apperror.Validation("invalid product id")
			}
			input.ProductID = &pid
		}
		out = append(out, input)
	}
	return out, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperror.Validation("invalid " + name + " date, expected YYYY-MM-DD")
	}
	return &t, nil
}
