package ports

import (
	"context"
	"errors"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Sentinel errors repositories wrap so services can branch on constraint
// violations without knowing the storage engine.
var (
	// ErrDuplicateKey reports a uniqueness violation on insert or update.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrRowReferenced reports a delete blocked by dependent rows.
	ErrRowReferenced = errors.New("row referenced by dependent records")
)

// CustomerRepository defines persistence operations for customers.
// Methods accepting pgx.Tx run inside transaction blocks so the wallet
// ledger can lock the customer row while it moves money.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error)
	List(ctx context.Context, params CustomerListParams) ([]domain.Customer, int64, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// GetByIDForUpdate fetches a customer with a pessimistic row lock.
	// MUST be called within a transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Customer, error)
	// UpdateBalance sets the wallet balance within a transaction. Only the
	// wallet ledger service may call this.
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error
}

// CustomerListParams holds filter + pagination for listing customers.
type CustomerListParams struct {
	Search   string // matches name, mobile or society
	Page     int
	PageSize int
}

// WalletTransactionRepository defines persistence for the append-only
// ledger. There is deliberately no update or delete.
type WalletTransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.WalletTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.WalletTransaction, error)
	// SumByCustomer returns the signed sum of the customer's ledger
	// (credits positive, debits negative), for balance reconciliation.
	SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	// Totals returns the credit and debit sums across all customers within
	// an optional date range, for dashboard aggregation.
	Totals(ctx context.Context, from, to *time.Time) (credits, debits decimal.Decimal, err error)
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, params ProductListParams) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetCategoryActive flips is_active for every product in a category and
	// returns the number of rows touched.
	SetCategoryActive(ctx context.Context, category string, active bool) (int64, error)
	// BulkUpdateField sets one whitelisted column across the given ids.
	BulkUpdateField(ctx context.Context, ids []uuid.UUID, field string, value any) (int64, error)
}

// ProductListParams holds filter + pagination for listing products.
type ProductListParams struct {
	Category   string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	// LastOrderNumberForDay returns the highest order number issued on the
	// given day, or "" when none exist yet. The next sequential number is
	// derived from it; the unique index on order_number arbitrates races.
	LastOrderNumberForDay(ctx context.Context, day time.Time) (string, error)
	GetStats(ctx context.Context, from, to *time.Time) (*OrderStats, error)
	TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]ProductSales, error)
}

// OrderListParams holds filter + pagination for listing orders.
type OrderListParams struct {
	CustomerID *uuid.UUID
	Status     *domain.OrderStatus
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

// OrderStats holds aggregated order counts and revenue. It is serialized
// both into the stats cache and straight out to dashboard clients.
type OrderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	Pending         int64           `json:"pending"`
	Delivered       int64           `json:"delivered"`
	Cancelled       int64           `json:"cancelled"`
	Revenue         decimal.Decimal `json:"revenue"`        // delivered orders, wallet draw included
	WalletSettled   decimal.Decimal `json:"wallet_settled"` // wallet_amount_used on non-cancelled orders
	AverageOrderVal decimal.Decimal `json:"average_order_value"`
}

// ProductSales is one row of the top-products aggregation.
type ProductSales struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StatsCache is a best-effort byte cache for dashboard aggregates.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
