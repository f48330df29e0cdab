package service

import (
	"context"
	"testing"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports/mocks"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc          *WalletServiceImpl
	customerRepo *mocks.MockCustomerRepository
	txnRepo      *mocks.MockWalletTransactionRepository
	transactor   *mocks.MockDBTransactor
	ctrl         *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		customerRepo: mocks.NewMockCustomerRepository(ctrl),
		txnRepo:      mocks.NewMockWalletTransactionRepository(ctrl),
		transactor:   mocks.NewMockDBTransactor(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewWalletService(d.customerRepo, d.txnRepo, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok, "expected *apperror.AppError, got %T", err)
	return appErr.Code
}

// ==================== AddFunds Tests ====================

func TestWalletService_AddFunds_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.customerRepo.EXPECT().GetByIDForUpdate(ctx, tx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("150.50"),
	}, nil)
	d.customerRepo.EXPECT().UpdateBalance(ctx, tx, customerID, dec("250.50")).Return(nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.WalletTransaction) error {
			assert.Equal(t, domain.TransactionTypeCredit, txn.Type)
			assert.True(t, txn.Amount.Equal(dec("100")))
			assert.True(t, txn.BalanceAfter.Equal(dec("250.50")))
			return nil
		})

	result, err := d.svc.AddFunds(ctx, ports.WalletOpRequest{
		CustomerID: customerID,
		Amount:     dec("100"),
		Note:       "Diwali advance",
	})

	require.NoError(t, err)
	assert.True(t, result.AmountProcessed.Equal(dec("100")))
	assert.True(t, result.BalanceAfter.Equal(dec("250.50")))
	assert.NotEqual(t, uuid.Nil, result.TransactionID)
}

func TestWalletService_AddFunds_RejectsNonPositiveAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	for _, amount := range []string{"0", "-50"} {
		_, err := d.svc.AddFunds(context.Background(), ports.WalletOpRequest{
			CustomerID: uuid.New(),
			Amount:     dec(amount),
		})
		require.Error(t, err)
		assert.Equal(t, "WAL_002", appCode(t, err))
	}
}

func TestWalletService_AddFunds_CustomerNotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.customerRepo.EXPECT().GetByIDForUpdate(ctx, tx, customerID).Return(nil, nil)

	_, err := d.svc.AddFunds(ctx, ports.WalletOpRequest{
		CustomerID: customerID,
		Amount:     dec("100"),
	})

	require.Error(t, err)
	assert.Equal(t, "CUS_001", appCode(t, err))
}

// ==================== DeductFunds Tests ====================

func TestWalletService_DeductFunds_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	orderID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.customerRepo.EXPECT().GetByIDForUpdate(ctx, tx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("500"),
	}, nil)
	d.customerRepo.EXPECT().UpdateBalance(ctx, tx, customerID, dec("200")).Return(nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.WalletTransaction) error {
			assert.Equal(t, domain.TransactionTypeDebit, txn.Type)
			require.NotNil(t, txn.OrderID)
			assert.Equal(t, orderID, *txn.OrderID)
			assert.True(t, txn.BalanceAfter.Equal(dec("200")))
			return nil
		})

	result, err := d.svc.DeductFunds(ctx, ports.WalletOpRequest{
		CustomerID: customerID,
		Amount:     dec("300"),
		OrderID:    &orderID,
	})

	require.NoError(t, err)
	assert.True(t, result.AmountProcessed.Equal(dec("300")))
	assert.True(t, result.BalanceAfter.Equal(dec("200")))
}

func TestWalletService_DeductFunds_ExactBalanceSucceeds(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.customerRepo.EXPECT().GetByIDForUpdate(ctx, tx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("300"),
	}, nil)
	d.customerRepo.EXPECT().UpdateBalance(ctx, tx, customerID, gomock.Cond(func(b decimal.Decimal) bool { return b.Equal(dec("0")) })).Return(nil)
	d.txnRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.DeductFunds(ctx, ports.WalletOpRequest{
		CustomerID: customerID,
		Amount:     dec("300"),
	})

	require.NoError(t, err)
	assert.True(t, result.BalanceAfter.IsZero())
}

func TestWalletService_DeductFunds_InsufficientBalance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.customerRepo.EXPECT().GetByIDForUpdate(ctx, tx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("299.99"),
	}, nil)
	// No UpdateBalance, no ledger insert: the operation fails whole.

	_, err := d.svc.DeductFunds(ctx, ports.WalletOpRequest{
		CustomerID: customerID,
		Amount:     dec("300"),
	})

	require.Error(t, err)
	assert.Equal(t, "WAL_001", appCode(t, err))
}

// ==================== GetWallet Tests ====================

func TestWalletService_GetWallet_ByCustomerID(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()

	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("420"),
	}, nil)
	d.txnRepo.EXPECT().ListByCustomer(ctx, customerID).Return([]domain.WalletTransaction{
		{ID: uuid.New(), CustomerID: customerID, Type: domain.TransactionTypeCredit, Amount: dec("420")},
	}, nil)

	info, err := d.svc.GetWallet(ctx, ports.WalletQuery{CustomerID: &customerID})

	require.NoError(t, err)
	assert.True(t, info.Balance.Equal(dec("420")))
	assert.Len(t, info.Transactions, 1)
}

func TestWalletService_GetWallet_ByMobile(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()

	d.customerRepo.EXPECT().GetByMobile(ctx, "9876543210").Return(&domain.Customer{
		ID:            customerID,
		MobileNumber:  "9876543210",
		WalletBalance: dec("75.25"),
	}, nil)
	d.txnRepo.EXPECT().ListByCustomer(ctx, customerID).Return(nil, nil)

	info, err := d.svc.GetWallet(ctx, ports.WalletQuery{MobileNumber: "9876543210"})

	require.NoError(t, err)
	assert.Equal(t, customerID, info.CustomerID)
	assert.True(t, info.Balance.Equal(dec("75.25")))
}

func TestWalletService_GetWallet_RequiresIdentifier(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.GetWallet(context.Background(), ports.WalletQuery{})

	require.Error(t, err)
	assert.Equal(t, "VAL_001", appCode(t, err))
}

// ==================== GetTransaction Tests ====================

func TestWalletService_GetTransaction_Found(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txnID := uuid.New()

	d.txnRepo.EXPECT().GetByID(ctx, txnID).Return(&domain.WalletTransaction{
		ID:     txnID,
		Type:   domain.TransactionTypeDebit,
		Amount: dec("60"),
	}, nil)

	txn, err := d.svc.GetTransaction(ctx, txnID)

	require.NoError(t, err)
	assert.Equal(t, txnID, txn.ID)
	assert.True(t, txn.Amount.Equal(dec("60")))
}

func TestWalletService_GetTransaction_NotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txnID := uuid.New()

	d.txnRepo.EXPECT().GetByID(ctx, txnID).Return(nil, nil)

	_, err := d.svc.GetTransaction(ctx, txnID)

	require.Error(t, err)
	assert.Equal(t, "WAL_003", appCode(t, err))
}

// ==================== Reconcile Tests ====================

func TestWalletService_Reconcile_Consistent(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()

	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("180"),
	}, nil)
	d.txnRepo.EXPECT().SumByCustomer(ctx, customerID).Return(dec("180"), nil)

	result, err := d.svc.Reconcile(ctx, customerID)

	require.NoError(t, err)
	assert.True(t, result.Consistent)
	assert.True(t, result.LedgerSum.Equal(result.WalletBalance))
}

func TestWalletService_Reconcile_Drift(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()

	d.customerRepo.EXPECT().GetByID(ctx, customerID).Return(&domain.Customer{
		ID:            customerID,
		WalletBalance: dec("200"),
	}, nil)
	d.txnRepo.EXPECT().SumByCustomer(ctx, customerID).Return(dec("180"), nil)

	result, err := d.svc.Reconcile(ctx, customerID)

	require.NoError(t, err)
	assert.False(t, result.Consistent)
	assert.True(t, result.WalletBalance.Equal(dec("200")))
	assert.True(t, result.LedgerSum.Equal(dec("180")))
}
