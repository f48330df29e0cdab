package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalletTxn(customerID uuid.UUID) *domain.WalletTransaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	orderID := uuid.New()
	return &domain.WalletTransaction{
		ID:           uuid.New(),
		CustomerID:   customerID,
		OrderID:      &orderID,
		Type:         domain.TransactionTypeDebit,
		Amount:       decimal.RequireFromString("120.00"),
		Note:         "Order ORD-20260901-0001",
		BalanceAfter: decimal.RequireFromString("130.50"),
		CreatedAt:    now,
	}
}

func walletTxnCols() []string {
	return []string{"id", "customer_id", "order_id", "type", "amount", "note",
		"balance_after", "metadata", "created_at"}
}

func walletTxnRow(t *testing.T, txn *domain.WalletTransaction) *pgxmock.Rows {
	t.Helper()
	var metadata []byte
	if txn.Metadata != nil {
		var err error
		metadata, err = json.Marshal(txn.Metadata)
		require.NoError(t, err)
	}
	return pgxmock.NewRows(walletTxnCols()).AddRow(
		txn.ID, txn.CustomerID, txn.OrderID, txn.Type, txn.Amount,
		txn.Note, txn.BalanceAfter, metadata, txn.CreatedAt,
	)
}

func TestWalletTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTxn(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(
			txn.ID, txn.CustomerID, txn.OrderID, txn.Type, txn.Amount,
			txn.Note, txn.BalanceAfter, pgxmock.AnyArg(), txn.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTxn(uuid.New())
	txn.Metadata = &domain.TransactionMetadata{
		IsReversal:     true,
		ReversalReason: "order cancelled",
	}

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(walletTxnRow(t, txn))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.CustomerID, result.CustomerID)
	assert.True(t, txn.Amount.Equal(result.Amount))
	require.NotNil(t, result.Metadata)
	assert.True(t, result.Metadata.IsReversal)
	assert.Equal(t, "order cancelled", result.Metadata.ReversalReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletTxnCols()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_ListByCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	customerID := uuid.New()
	txn := newTestWalletTxn(customerID)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE customer_id .+ ORDER BY created_at DESC").
		WithArgs(customerID).
		WillReturnRows(walletTxnRow(t, txn))

	txns, err := repo.ListByCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, txn.ID, txns[0].ID)
	assert.Nil(t, txns[0].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_ListByCustomer_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE customer_id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(walletTxnCols()))

	txns, err := repo.ListByCustomer(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_ListByOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTxn(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE order_id").
		WithArgs(*txn.OrderID).
		WillReturnRows(walletTxnRow(t, txn))

	txns, err := repo.ListByOrder(context.Background(), *txn.OrderID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.TransactionTypeDebit, txns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_SumByCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	customerID := uuid.New()

	mock.ExpectQuery("SELECT COALESCE.+ FROM wallet_transactions WHERE customer_id").
		WithArgs(customerID).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(decimal.RequireFromString("130.50")))

	sum, err := repo.SumByCustomer(context.Background(), customerID)
	assert.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("130.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_Totals_DateRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE created_at").
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"credits", "debits"}).
			AddRow(decimal.RequireFromString("1000"), decimal.RequireFromString("650.25")))

	credits, debits, err := repo.Totals(context.Background(), &from, &to)
	assert.NoError(t, err)
	assert.True(t, credits.Equal(decimal.RequireFromString("1000")))
	assert.True(t, debits.Equal(decimal.RequireFromString("650.25")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
