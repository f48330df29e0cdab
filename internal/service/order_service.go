package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderServiceImpl implements ports.OrderService. It owns the settlement
// policy: when a customer opts into wallet payment it draws
// min(balance, payable) through a single exact DeductFunds call and records
// whatever remains as the amount due by other means. The ledger itself
// never partially settles.
type OrderServiceImpl struct {
	orderRepo    ports.OrderRepository
	customerRepo ports.CustomerRepository
	walletSvc    ports.WalletService
	log          zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	orderRepo ports.OrderRepository,
	customerRepo ports.CustomerRepository,
	walletSvc ports.WalletService,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		walletSvc:    walletSvc,
		log:          log,
	}
}

// Create places a new order, optionally settling part of it from the
// customer's wallet.
func (s *OrderServiceImpl) Create(ctx context.Context, req ports.CreateOrderRequest) (*domain.Order, error) {
	items, total, err := buildOrderItems(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Discount.IsNegative() {
		return nil, apperror.Validation("discount cannot be negative")
	}
	if req.Discount.GreaterThan(total) {
		return nil, apperror.Validation("discount cannot exceed the order total")
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}

	payable := total.Sub(req.Discount)
	now := time.Now().UTC()
	order := &domain.Order{
		ID:               uuid.New(),
		CustomerID:       req.CustomerID,
		Items:            items,
		TotalAmount:      total,
		Discount:         req.Discount,
		WalletAmountUsed: decimal.Zero,
		FinalAmount:      payable,
		Status:           domain.OrderStatusPending,
		PaymentStatus:    domain.PaymentStatusPending,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if payable.IsZero() {
		order.PaymentStatus = domain.PaymentStatusPaid
	}

	// The order row exists before any ledger entry references it. Two
	// requests can race to the same sequence number; the unique index on
	// order_number arbitrates and the loser recomputes from the new maximum.
	if err := s.createWithFreshNumber(ctx, order, now); err != nil {
		return nil, err
	}

	if req.UseWallet && payable.IsPositive() {
		if err := s.settleFromWallet(ctx, order, customer.WalletBalance, payable); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("customer_id", order.CustomerID.String()).
		Str("final_amount", order.FinalAmount.String()).
		Str("wallet_used", order.WalletAmountUsed.String()).
		Msg("order created")

	return order, nil
}

// settleFromWallet draws min(balance, payable) from the wallet and records
// the result on the order. A draw that loses a race to a concurrent debit
// leaves the order fully due by other means rather than failing it.
func (s *OrderServiceImpl) settleFromWallet(ctx context.Context, order *domain.Order, balance, payable decimal.Decimal) error {
	draw := decimal.Min(balance, payable)
	if !draw.IsPositive() {
		return nil
	}

	result, err := s.walletSvc.DeductFunds(ctx, ports.WalletOpRequest{
		CustomerID: order.CustomerID,
		Amount:     draw,
		Note:       fmt.Sprintf("Order %s", order.OrderNumber),
		OrderID:    &order.ID,
		Metadata:   &domain.TransactionMetadata{ItemDetails: order.ItemDetails()},
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "WAL_001" {
			s.log.Warn().
				Str("order_id", order.ID.String()).
				Str("requested", draw.String()).
				Msg("wallet draw lost a race, order left unsettled")
			return nil
		}
		return err
	}

	order.WalletAmountUsed = result.AmountProcessed
	order.FinalAmount = payable.Sub(result.AmountProcessed)
	if order.FinalAmount.IsZero() {
		order.PaymentStatus = domain.PaymentStatusPaid
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return apperror.InternalError(fmt.Errorf("record settlement: %w", err))
	}
	return nil
}

// GetByID fetches one order.
func (s *OrderServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound()
	}
	return order, nil
}

// List returns a page of orders plus the total count.
func (s *OrderServiceImpl) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list orders: %w", err))
	}
	return orders, total, nil
}

// Update edits an order's lines, discount or notes, and adjusts any wallet
// settlement by the difference. Adjustment entries are new ledger rows
// tagged with the original amount; the original entries are never touched.
func (s *OrderServiceImpl) Update(ctx context.Context, id uuid.UUID, req ports.UpdateOrderRequest) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound()
	}
	if order.IsTerminal() {
		return nil, apperror.Validation("cancelled orders cannot be edited")
	}

	if req.Items != nil {
		items, total, err := buildOrderItems(req.Items)
		if err != nil {
			return nil, err
		}
		order.Items = items
		order.TotalAmount = total
	}
	if req.Discount != nil {
		if req.Discount.IsNegative() {
			return nil, apperror.Validation("discount cannot be negative")
		}
		order.Discount = *req.Discount
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if order.Discount.GreaterThan(order.TotalAmount) {
		return nil, apperror.Validation("discount cannot exceed the order total")
	}

	payable := order.TotalAmount.Sub(order.Discount)

	previousUsed := order.WalletAmountUsed
	targetUsed := decimal.Zero
	if req.UseWallet {
		customer, err := s.customerRepo.GetByID(ctx, order.CustomerID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
		}
		if customer == nil {
			return nil, apperror.ErrCustomerNotFound()
		}
		// The amount already drawn for this order stays available to it.
		targetUsed = decimal.Min(customer.WalletBalance.Add(previousUsed), payable)
	}

	if !targetUsed.Equal(previousUsed) {
		if err := s.adjustSettlement(ctx, order, previousUsed, targetUsed); err != nil {
			return nil, err
		}
	}

	order.WalletAmountUsed = targetUsed
	order.FinalAmount = payable.Sub(targetUsed)
	order.PaymentStatus = domain.PaymentStatusPending
	if order.FinalAmount.IsZero() {
		order.PaymentStatus = domain.PaymentStatusPaid
	}
	order.UpdatedAt = time.Now().UTC()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update order: %w", err))
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("wallet_used", order.WalletAmountUsed.String()).
		Str("final_amount", order.FinalAmount.String()).
		Msg("order updated")

	return order, nil
}

// adjustSettlement moves the wallet draw for an edited order from
// previousUsed to targetUsed with one compensating ledger entry.
func (s *OrderServiceImpl) adjustSettlement(ctx context.Context, order *domain.Order, previousUsed, targetUsed decimal.Decimal) error {
	meta := &domain.TransactionMetadata{
		OriginalAmount:   &previousUsed,
		AdjustmentReason: "order edited",
		EditHistory:      true,
		ItemDetails:      order.ItemDetails(),
	}
	req := ports.WalletOpRequest{
		CustomerID: order.CustomerID,
		OrderID:    &order.ID,
		Metadata:   meta,
	}

	var err error
	if targetUsed.GreaterThan(previousUsed) {
		req.Amount = targetUsed.Sub(previousUsed)
		req.Note = fmt.Sprintf("Order %s edited, additional wallet draw", order.OrderNumber)
		_, err = s.walletSvc.DeductFunds(ctx, req)
	} else {
		req.Amount = previousUsed.Sub(targetUsed)
		req.Note = fmt.Sprintf("Order %s edited, wallet refund", order.OrderNumber)
		_, err = s.walletSvc.AddFunds(ctx, req)
	}
	return err
}

// UpdateStatus moves an order through its lifecycle. Cancelling an order
// with wallet settlement appends a compensating credit for the full amount
// drawn.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound()
	}
	if !order.CanTransitionTo(status) {
		return nil, apperror.ErrInvalidStatusTransition(string(order.Status), string(status))
	}

	var paymentStatus *domain.PaymentStatus
	if status == domain.OrderStatusDelivered && order.FinalAmount.IsZero() {
		paid := domain.PaymentStatusPaid
		paymentStatus = &paid
	}

	if status == domain.OrderStatusCancelled && order.WalletAmountUsed.IsPositive() {
		if err := s.reverseSettlement(ctx, order); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status, paymentStatus); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update order status: %w", err))
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(status)).
		Msg("order status changed")

	order.Status = status
	if paymentStatus != nil {
		order.PaymentStatus = *paymentStatus
	}
	order.UpdatedAt = time.Now().UTC()
	return order, nil
}

// reverseSettlement credits back everything this order drew from the
// wallet, referencing the most recent debit it is compensating.
func (s *OrderServiceImpl) reverseSettlement(ctx context.Context, order *domain.Order) error {
	meta := &domain.TransactionMetadata{
		IsReversal:     true,
		ReversalReason: "order cancelled",
	}

	txns, err := s.walletSvc.GetOrderTransactions(ctx, order.ID)
	if err != nil {
		return err
	}
	for _, txn := range txns {
		if txn.Type == domain.TransactionTypeDebit {
			originalID := txn.ID
			meta.OriginalTransactionID = &originalID
			break
		}
	}

	_, err = s.walletSvc.AddFunds(ctx, ports.WalletOpRequest{
		CustomerID: order.CustomerID,
		Amount:     order.WalletAmountUsed,
		Note:       fmt.Sprintf("Order %s cancelled, wallet refund", order.OrderNumber),
		OrderID:    &order.ID,
		Metadata:   meta,
	})
	return err
}

// Delete removes an order. Orders holding wallet funds must be cancelled
// first so the reversal runs.
func (s *OrderServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return apperror.ErrOrderNotFound()
	}
	if order.WalletAmountUsed.IsPositive() && order.Status != domain.OrderStatusCancelled {
		return apperror.Validation("cancel the order before deleting it so wallet funds are returned")
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("delete order: %w", err))
	}

	s.log.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// orderNumberAttempts bounds the insert retries when concurrent creates
// collide on the same sequence number. Every collision means another order
// won that number, so the sequence always moves forward.
const orderNumberAttempts = 5

// createWithFreshNumber assigns the next sequential number ORD-YYYYMMDD-NNNN
// and inserts the order, recomputing the number whenever the unique index
// rejects it.
func (s *OrderServiceImpl) createWithFreshNumber(ctx context.Context, order *domain.Order, day time.Time) error {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number, err := s.nextOrderNumber(ctx, day)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, ports.ErrDuplicateKey) {
			continue
		}
		return apperror.InternalError(fmt.Errorf("create order: %w", err))
	}
	return apperror.InternalError(fmt.Errorf("create order: number collisions exhausted %d attempts", orderNumberAttempts))
}

// nextOrderNumber derives the next sequential number for the day from the
// highest number already issued.
func (s *OrderServiceImpl) nextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	last, err := s.orderRepo.LastOrderNumberForDay(ctx, day)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("last order number: %w", err))
	}

	seq := 1
	if last != "" {
		n, err := strconv.Atoi(last[strings.LastIndex(last, "-")+1:])
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("malformed order number %q: %w", last, err))
		}
		seq = n + 1
	}
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), seq), nil
}

// buildOrderItems validates submitted lines and computes their amounts and
// the order total.
func buildOrderItems(inputs []ports.OrderItemInput) ([]domain.OrderItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, apperror.ErrEmptyOrder()
	}

	items := make([]domain.OrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		if in.Name == "" {
			return nil, decimal.Zero, apperror.Validation("order item name is required")
		}
		if !in.Quantity.IsPositive() {
			return nil, decimal.Zero, apperror.Validation("order item quantity must be positive")
		}
		if in.Price.IsNegative() {
			return nil, decimal.Zero, apperror.Validation("order item price cannot be negative")
		}
		amount := in.Price.Mul(in.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: in.ProductID,
			Name:      in.Name,
			Quantity:  in.Quantity,
			Unit:      in.Unit,
			Price:     in.Price,
			Amount:    amount,
		})
		total = total.Add(amount)
	}
	return items, total, nil
}
