package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService. It is the only code
// path that writes wallet_balance or inserts ledger rows.
//
// Every mutation runs inside one database transaction: the customer row is
// locked FOR UPDATE, the new balance is written, and the ledger entry is
// inserted before commit. Two concurrent operations on the same customer
// therefore serialize on the row lock, and a balance update can never
// commit without its matching ledger entry.
type WalletServiceImpl struct {
	customerRepo ports.CustomerRepository
	txnRepo      ports.WalletTransactionRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	customerRepo ports.CustomerRepository,
	txnRepo ports.WalletTransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		customerRepo: customerRepo,
		txnRepo:      txnRepo,
		transactor:   transactor,
		log:          log,
	}
}

// AddFunds credits the customer's wallet with the exact requested amount.
func (s *WalletServiceImpl) AddFunds(ctx context.Context, req ports.WalletOpRequest) (*ports.WalletOpResult, error) {
	return s.apply(ctx, req, domain.TransactionTypeCredit)
}

// DeductFunds debits the customer's wallet with the exact requested amount,
// or fails with WAL_001 when the balance does not cover it. The service
// never draws a partial amount; auto-draw policy belongs to callers.
func (s *WalletServiceImpl) DeductFunds(ctx context.Context, req ports.WalletOpRequest) (*ports.WalletOpResult, error) {
	return s.apply(ctx, req, domain.TransactionTypeDebit)
}

// apply performs the locked read-modify-write shared by credits and debits.
func (s *WalletServiceImpl) apply(ctx context.Context, req ports.WalletOpRequest, txnType domain.TransactionType) (*ports.WalletOpResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get customer
	customer, err := s.customerRepo.GetByIDForUpdate(ctx, dbTx, req.CustomerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}

	newBalance := customer.WalletBalance
	switch txnType {
	case domain.TransactionTypeCredit:
		newBalance = newBalance.Add(req.Amount)
	case domain.TransactionTypeDebit:
		if customer.WalletBalance.LessThan(req.Amount) {
			return nil, apperror.ErrInsufficientBalance()
		}
		newBalance = newBalance.Sub(req.Amount)
	}

	txn := &domain.WalletTransaction{
		ID:           uuid.New(),
		CustomerID:   req.CustomerID,
		OrderID:      req.OrderID,
		Type:         txnType,
		Amount:       req.Amount,
		Note:         req.Note,
		BalanceAfter: newBalance,
		Metadata:     req.Metadata,
		CreatedAt:    time.Now().UTC(),
	}

	// Persist: update customer balance
	if err := s.customerRepo.UpdateBalance(ctx, dbTx, req.CustomerID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	// Persist: append ledger entry
	if err := s.txnRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet transaction: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("txn_id", txn.ID.String()).
		Str("customer_id", req.CustomerID.String()).
		Str("type", string(txnType)).
		Str("amount", req.Amount.String()).
		Str("balance_after", newBalance.String()).
		Msg("wallet operation applied")

	return &ports.WalletOpResult{
		TransactionID:   txn.ID,
		AmountProcessed: req.Amount,
		BalanceAfter:    newBalance,
	}, nil
}

// GetWallet returns the balance and full history for a customer looked up
// by id or mobile number.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, query ports.WalletQuery) (*ports.WalletInfo, error) {
	var customer *domain.Customer
	var err error

	switch {
	case query.CustomerID != nil:
		customer, err = s.customerRepo.GetByID(ctx, *query.CustomerID)
	case query.MobileNumber != "":
		customer, err = s.customerRepo.GetByMobile(ctx, query.MobileNumber)
	default:
		return nil, apperror.Validation("customerId or mobileNumber is required")
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}

	txns, err := s.txnRepo.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallet transactions: %w", err))
	}

	return &ports.WalletInfo{
		CustomerID:   customer.ID,
		Balance:      customer.WalletBalance,
		Transactions: txns,
	}, nil
}

// GetTransaction fetches a single ledger entry.
func (s *WalletServiceImpl) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}

// GetCustomerTransactions returns the customer's ledger, most recent first.
// An empty history is not an error.
func (s *WalletServiceImpl) GetCustomerTransactions(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error) {
	txns, err := s.txnRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallet transactions: %w", err))
	}
	return txns, nil
}

// GetOrderTransactions returns all wallet activity caused by an order,
// most recent first.
func (s *WalletServiceImpl) GetOrderTransactions(ctx context.Context, orderID uuid.UUID) ([]domain.WalletTransaction, error) {
	txns, err := s.txnRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list order transactions: %w", err))
	}
	return txns, nil
}

// Reconcile compares the stored balance against the signed ledger sum.
// A mismatch means a balance write committed without its ledger entry
// (or vice versa) and needs operator attention.
func (s *WalletServiceImpl) Reconcile(ctx context.Context, customerID uuid.UUID) (*ports.ReconcileResult, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}

	ledgerSum, err := s.txnRepo.SumByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum ledger: %w", err))
	}

	result := &ports.ReconcileResult{
		CustomerID:    customerID,
		WalletBalance: customer.WalletBalance,
		LedgerSum:     ledgerSum,
		Consistent:    customer.WalletBalance.Equal(ledgerSum),
	}

	if !result.Consistent {
		s.log.Error().
			Str("customer_id", customerID.String()).
			Str("wallet_balance", customer.WalletBalance.String()).
			Str("ledger_sum", ledgerSum.String()).
			Msg("wallet balance does not match ledger replay")
	}

	return result, nil
}
