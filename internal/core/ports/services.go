package ports

import (
	"context"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Service Ports (Business Logic) ---

// WalletService is the single authority for mutating wallet balances and
// appending ledger entries. Its contract is exact-amount-or-fail: it only
// ever moves the amount it is asked to move. Partial-settlement policy
// belongs to callers (the order flow).
type WalletService interface {
	AddFunds(ctx context.Context, req WalletOpRequest) (*WalletOpResult, error)
	DeductFunds(ctx context.Context, req WalletOpRequest) (*WalletOpResult, error)
	GetWallet(ctx context.Context, query WalletQuery) (*WalletInfo, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error)
	GetCustomerTransactions(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error)
	GetOrderTransactions(ctx context.Context, orderID uuid.UUID) ([]domain.WalletTransaction, error)
	Reconcile(ctx context.Context, customerID uuid.UUID) (*ReconcileResult, error)
}

// WalletOpRequest holds validated input for a credit or debit.
type WalletOpRequest struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Note       string
	OrderID    *uuid.UUID
	Metadata   *domain.TransactionMetadata
}

// WalletOpResult reports the outcome of a ledger operation.
// AmountProcessed always equals the requested amount on success; it is
// surfaced so order-settlement callers can compute the remainder due.
type WalletOpResult struct {
	TransactionID   uuid.UUID
	AmountProcessed decimal.Decimal
	BalanceAfter    decimal.Decimal
}

// WalletQuery identifies a customer by id or mobile number (exactly one set).
type WalletQuery struct {
	CustomerID   *uuid.UUID
	MobileNumber string
}

// WalletInfo is the balance plus full history for one customer.
type WalletInfo struct {
	CustomerID   uuid.UUID
	Balance      decimal.Decimal
	Transactions []domain.WalletTransaction
}

// ReconcileResult compares the stored balance against the ledger replay.
type ReconcileResult struct {
	CustomerID    uuid.UUID
	WalletBalance decimal.Decimal
	LedgerSum     decimal.Decimal
	Consistent    bool
}

// CustomerService defines customer profile management. It never touches
// wallet balances.
type CustomerService interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error)
	List(ctx context.Context, params CustomerListParams) ([]domain.Customer, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCustomerRequest holds input for customer creation.
type CreateCustomerRequest struct {
	CountryCode  string
	MobileNumber string
	FlatNumber   string
	SocietyName  string
	CustomerName string
	Address      string
}

// UpdateCustomerRequest holds profile fields to change; nil means keep.
type UpdateCustomerRequest struct {
	CountryCode  *string
	MobileNumber *string
	FlatNumber   *string
	SocietyName  *string
	CustomerName *string
	Address      *string
}

// ProductService defines catalog management.
type ProductService interface {
	Create(ctx context.Context, req CreateProductRequest) (*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, params ProductListParams) ([]domain.Product, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleCategory(ctx context.Context, category string, active bool) (int64, error)
	BulkUpdateField(ctx context.Context, ids []uuid.UUID, field string, value any) (int64, error)
}

// CreateProductRequest holds input for product creation.
type CreateProductRequest struct {
	Name          string
	NameGujarati  string
	Category      string
	Unit          string
	Price         decimal.Decimal
	StockQuantity decimal.Decimal
}

// UpdateProductRequest holds product fields to change; nil means keep.
type UpdateProductRequest struct {
	Name          *string
	NameGujarati  *string
	Category      *string
	Unit          *string
	Price         *decimal.Decimal
	StockQuantity *decimal.Decimal
	IsActive      *bool
}

// OrderService defines order management including wallet settlement.
type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderItemInput is an order line as submitted by the client. Amount is
// recomputed server-side from Price and Quantity.
type OrderItemInput struct {
	ProductID *uuid.UUID
	Name      string
	Quantity  decimal.Decimal
	Unit      string
	Price     decimal.Decimal
}

// CreateOrderRequest holds input for order creation. UseWallet enables the
// auto-draw policy: draw min(balance, payable) from the wallet and leave
// the remainder as FinalAmount due by other means.
type CreateOrderRequest struct {
	CustomerID uuid.UUID
	Items      []OrderItemInput
	Discount   decimal.Decimal
	UseWallet  bool
	Notes      string
}

// UpdateOrderRequest holds order edits. Items replace the existing lines
// when non-nil; totals and wallet adjustments are recomputed.
type UpdateOrderRequest struct {
	Items     []OrderItemInput
	Discount  *decimal.Decimal
	UseWallet bool
	Notes     *string
}

// DashboardService serves aggregate statistics for the back-office UI.
type DashboardService interface {
	GetStats(ctx context.Context, from, to *time.Time) (*DashboardStats, error)
}

// DashboardStats is the full dashboard aggregate.
type DashboardStats struct {
	Orders        OrderStats      `json:"orders"`
	WalletCredits decimal.Decimal `json:"wallet_credits"`
	WalletDebits  decimal.Decimal `json:"wallet_debits"`
	CustomerCount int64           `json:"customer_count"`
	TopProducts   []ProductSales  `json:"top_products"`
}
