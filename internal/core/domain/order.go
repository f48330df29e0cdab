package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents how much of the order's due amount is settled.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderItem is a single line of an order. Amount = Price * Quantity,
// computed server-side.
type OrderItem struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

// Order is a customer order. FinalAmount is what remains due after the
// discount and any wallet draw: TotalAmount - Discount - WalletAmountUsed.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	OrderNumber      string          `json:"order_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	Items            []OrderItem     `json:"items"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Discount         decimal.Decimal `json:"discount"`
	WalletAmountUsed decimal.Decimal `json:"wallet_amount_used"`
	FinalAmount      decimal.Decimal `json:"final_amount"`
	Status           OrderStatus     `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsTerminal returns true once the order can no longer change state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCancelled
}

// CanTransitionTo validates a status change. Cancelled is terminal;
// delivered orders can still be cancelled (with a wallet reversal).
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if o.Status == next {
		return false
	}
	switch o.Status {
	case OrderStatusPending:
		return next == OrderStatusDelivered || next == OrderStatusCancelled
	case OrderStatusDelivered:
		return next == OrderStatusCancelled
	default:
		return false
	}
}

// ItemDetails converts order lines into the snapshot form stored on
// wallet settlement transactions.
func (o *Order) ItemDetails() []ItemDetail {
	details := make([]ItemDetail, 0, len(o.Items))
	for _, it := range o.Items {
		details = append(details, ItemDetail{
			Name:     it.Name,
			Quantity: it.Quantity,
			Unit:     it.Unit,
			Price:    it.Price,
			Amount:   it.Amount,
		})
	}
	return details
}
