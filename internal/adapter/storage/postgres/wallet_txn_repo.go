package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletTransactionRepo implements ports.WalletTransactionRepository.
// The wallet_transactions table is append-only: this type carries no
// UPDATE or DELETE statements.
type WalletTransactionRepo struct {
	pool Pool
}

// NewWalletTransactionRepo creates a new WalletTransactionRepo.
func NewWalletTransactionRepo(pool Pool) *WalletTransactionRepo {
	return &WalletTransactionRepo{pool: pool}
}

const walletTxnColumns = `id, customer_id, order_id, type, amount, note, balance_after, metadata, created_at`

// Create inserts a ledger entry within a database transaction, so the
// insert commits or rolls back together with the balance update.
func (r *WalletTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	var metadata []byte
	if t.Metadata != nil {
		var err error
		metadata, err = json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("marshal transaction metadata: %w", err)
		}
	}

	query := `INSERT INTO wallet_transactions (id, customer_id, order_id, type, amount, note, balance_after, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.CustomerID, t.OrderID, t.Type, t.Amount,
		t.Note, t.BalanceAfter, metadata, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// GetByID fetches a single ledger entry.
func (r *WalletTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM wallet_transactions WHERE id = $1`, walletTxnColumns)

	t, err := scanWalletTxn(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByCustomer returns the customer's full ledger, most recent first.
func (r *WalletTransactionRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM wallet_transactions
		WHERE customer_id = $1 ORDER BY created_at DESC`, walletTxnColumns)
	return r.queryTxns(ctx, query, customerID)
}

// ListByOrder returns all ledger entries referencing an order, most recent
// first — typically a debit at creation and a credit reversal on
// cancellation.
func (r *WalletTransactionRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.WalletTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM wallet_transactions
		WHERE order_id = $1 ORDER BY created_at DESC`, walletTxnColumns)
	return r.queryTxns(ctx, query, orderID)
}

// SumByCustomer replays the ledger in SQL: credits add, debits subtract.
// The result must equal the customer's stored wallet balance.
func (r *WalletTransactionRepo) SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0)
		FROM wallet_transactions WHERE customer_id = $1`

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, customerID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum wallet transactions: %w", err)
	}
	return sum, nil
}

// Totals returns credit and debit sums across all customers, optionally
// bounded by a date range.
func (r *WalletTransactionRepo) Totals(ctx context.Context, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
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
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT
		COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0),
		COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)
		FROM wallet_transactions %s`, where)

	var credits, debits decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&credits, &debits); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("wallet transaction totals: %w", err)
	}
	return credits, debits, nil
}

func (r *WalletTransactionRepo) queryTxns(ctx context.Context, query string, args ...any) ([]domain.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query wallet transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.WalletTransaction{}
	for rows.Next() {
		t, err := scanWalletTxn(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transaction rows: %w", err)
	}
	return txns, nil
}

func scanWalletTxn(row pgx.Row) (*domain.WalletTransaction, error) {
	t := &domain.WalletTransaction{}
	var metadata []byte
	err := row.Scan(
		&t.ID, &t.CustomerID, &t.OrderID, &t.Type, &t.Amount,
		&t.Note, &t.BalanceAfter, &metadata, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan wallet transaction: %w", err)
	}
	if len(metadata) > 0 {
		t.Metadata = &domain.TransactionMetadata{}
		if err := json.Unmarshal(metadata, t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	return t, nil
}
