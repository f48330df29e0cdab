package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const orderColumns = `id, order_number, customer_id, items, total_amount, discount,
	wallet_amount_used, final_amount, status, payment_status, notes, created_at, updated_at`

// OrderRepo implements ports.OrderRepository. Order lines are stored as a
// jsonb document on the order row.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, order_number, customer_id, items, total_amount, discount,
		wallet_amount_used, final_amount, status, payment_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, query,
		o.ID, o.OrderNumber, o.CustomerID, items, o.TotalAmount, o.Discount,
		o.WalletAmountUsed, o.FinalAmount, o.Status, o.PaymentStatus, o.Notes,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("duplicate order number %s: %w", o.OrderNumber, ports.ErrDuplicateKey)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by UUID.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// List fetches orders with filtering and pagination, newest first.
func (r *OrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIdx))
		args = append(args, *params.CustomerID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, total, nil
}

// Update persists an edited order.
func (r *OrderRepo) Update(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `UPDATE orders SET items = $1, total_amount = $2, discount = $3,
		wallet_amount_used = $4, final_amount = $5, status = $6, payment_status = $7,
		notes = $8, updated_at = NOW()
		WHERE id = $9`

	tag, err := r.pool.Exec(ctx, query,
		items, o.TotalAmount, o.Discount, o.WalletAmountUsed, o.FinalAmount,
		o.Status, o.PaymentStatus, o.Notes, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", o.ID)
	}
	return nil
}

// UpdateStatus changes the order status, optionally with the payment status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) error {
	var tagErr error
	if paymentStatus != nil {
		tag, err := r.pool.Exec(ctx,
			`UPDATE orders SET status = $1, payment_status = $2, updated_at = NOW() WHERE id = $3`,
			status, *paymentStatus, id)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			tagErr = fmt.Errorf("order not found: %s", id)
		}
	} else {
		tag, err := r.pool.Exec(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			tagErr = fmt.Errorf("order not found: %s", id)
		}
	}
	return tagErr
}

// Delete removes an order. Ledger entries referencing it survive — the
// order id on a wallet transaction is a weak reference.
func (r *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// LastOrderNumberForDay returns the highest order number issued on the
// given calendar day, or "" when none exist yet. The zero-padded suffix
// makes MAX over text equivalent to MAX over the sequence.
func (r *OrderRepo) LastOrderNumberForDay(ctx context.Context, day time.Time) (string, error) {
	prefix := "ORD-" + day.Format("20060102") + "-"

	var last string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_number), '') FROM orders WHERE order_number LIKE $1`,
		prefix+"%").Scan(&last)
	if err != nil {
		return "", fmt.Errorf("last order number for day: %w", err)
	}
	return last, nil
}

// GetStats retrieves aggregated order statistics.
func (r *OrderRepo) GetStats(ctx context.Context, from, to *time.Time) (*ports.OrderStats, error) {
	where, args := dateRangeFilter(from, to)

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
		COALESCE(SUM(final_amount + wallet_amount_used) FILTER (WHERE status = 'delivered'), 0) AS revenue,
		COALESCE(SUM(wallet_amount_used) FILTER (WHERE status != 'cancelled'), 0) AS wallet_settled,
		COALESCE(AVG(total_amount) FILTER (WHERE status != 'cancelled'), 0) AS avg_order
		FROM orders %s`, where)

	stats := &ports.OrderStats{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalOrders, &stats.Pending, &stats.Delivered, &stats.Cancelled,
		&stats.Revenue, &stats.WalletSettled, &stats.AverageOrderVal,
	)
	if err != nil {
		return nil, fmt.Errorf("get order stats: %w", err)
	}
	return stats, nil
}

// TopProducts aggregates order lines out of the jsonb items column.
func (r *OrderRepo) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]ports.ProductSales, error) {
	where, args := dateRangeFilter(from, to)
	if where == "" {
		where = "WHERE status != 'cancelled'"
	} else {
		where += " AND status != 'cancelled'"
	}

	query := fmt.Sprintf(`SELECT item->>'name',
		COALESCE(SUM((item->>'quantity')::numeric), 0),
		COALESCE(SUM((item->>'amount')::numeric), 0)
		FROM orders, jsonb_array_elements(items) AS item
		%s
		GROUP BY item->>'name'
		ORDER BY SUM((item->>'amount')::numeric) DESC
		LIMIT $%d`, where, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var sales []ports.ProductSales
	for rows.Next() {
		s := ports.ProductSales{}
		if err := rows.Scan(&s.Name, &s.Quantity, &s.Amount); err != nil {
			return nil, fmt.Errorf("scan product sales row: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product sales rows: %w", err)
	}
	return sales, nil
}

func dateRangeFilter(from, to *time.Time) (string, []any) {
	var conditions []string
	var args []any
	argIdx := 1

	if from != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *to)
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	var items []byte
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &items, &o.TotalAmount, &o.Discount,
		&o.WalletAmountUsed, &o.FinalAmount, &o.Status, &o.PaymentStatus, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o, nil
}
