package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Customers that predate the wallet feature can carry a NULL balance;
// every read path coalesces it to zero.
const customerColumns = `id, country_code, mobile_number, flat_number, society_name,
	customer_name, address, COALESCE(wallet_balance, 0), created_at, updated_at`

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (id, country_code, mobile_number, flat_number, society_name,
		customer_name, address, wallet_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.CountryCode, c.MobileNumber, c.FlatNumber, c.SocietyName,
		c.CustomerName, c.Address, c.WalletBalance, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("duplicate mobile number: %w", ports.ErrDuplicateKey)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID fetches a customer by UUID (without locking).
func (r *CustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	return r.scanCustomer(r.pool.QueryRow(ctx, query, id))
}

// GetByMobile fetches a customer by mobile number.
func (r *CustomerRepo) GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE mobile_number = $1`, customerColumns)
	return r.scanCustomer(r.pool.QueryRow(ctx, query, mobile))
}

// GetByIDForUpdate fetches a customer with a pessimistic row lock.
// MUST be called within a transaction. The lock serializes concurrent
// wallet operations on the same customer.
func (r *CustomerRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1 FOR UPDATE`, customerColumns)
	return r.scanCustomer(tx.QueryRow(ctx, query, id))
}

// UpdateBalance sets the wallet balance within a transaction.
func (r *CustomerRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE customers SET wallet_balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", id)
	}
	return nil
}

// List fetches customers with search and pagination, newest first.
func (r *CustomerRepo) List(ctx context.Context, params ports.CustomerListParams) ([]domain.Customer, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(customer_name ILIKE $%d OR mobile_number ILIKE $%d OR society_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		customerColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c := domain.Customer{}
		if err := rows.Scan(
			&c.ID, &c.CountryCode, &c.MobileNumber, &c.FlatNumber, &c.SocietyName,
			&c.CustomerName, &c.Address, &c.WalletBalance, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, total, nil
}

// Update persists profile fields. The wallet balance column is not part of
// this statement so profile edits cannot race ledger operations.
func (r *CustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET country_code = $1, mobile_number = $2, flat_number = $3,
		society_name = $4, customer_name = $5, address = $6, updated_at = NOW()
		WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query,
		c.CountryCode, c.MobileNumber, c.FlatNumber,
		c.SocietyName, c.CustomerName, c.Address, c.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("duplicate mobile number: %w", ports.ErrDuplicateKey)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", c.ID)
	}
	return nil
}

// Delete removes a customer. Orders and ledger rows keep FK references to
// the customer, so a delete with history is blocked by the database.
func (r *CustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("customer has dependent records: %w", ports.ErrRowReferenced)
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found: %s", id)
	}
	return nil
}

// Count returns the total number of customers.
func (r *CustomerRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return total, nil
}

// scanCustomer scans a single row into a Customer. Returns nil, nil when
// no row matched.
func (r *CustomerRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(
		&c.ID, &c.CountryCode, &c.MobileNumber, &c.FlatNumber, &c.SocietyName,
		&c.CustomerName, &c.Address, &c.WalletBalance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}
