package handler

import (
	"context"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/dto"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"
	"github.com/sanjaypunani/order-managment-sub001/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// AddFunds handles POST /api/v1/wallet/add.
func (h *WalletHandler) AddFunds(c *gin.Context) {
	h.applyOp(c, h.walletSvc.AddFunds, "Funds added")
}

// DeductFunds handles POST /api/v1/wallet/deduct.
func (h *WalletHandler) DeductFunds(c *gin.Context) {
	h.applyOp(c, h.walletSvc.DeductFunds, "Funds deducted")
}

func (h *WalletHandler) applyOp(
	c *gin.Context,
	op func(ctx context.Context, req ports.WalletOpRequest) (*ports.WalletOpResult, error),
	message string,
) {
	var req dto.WalletOpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	opReq := ports.WalletOpRequest{
		CustomerID: customerID,
		Amount:     amount,
		Note:       req.Note,
	}
	if req.OrderID != nil {
		orderID, err := uuid.Parse(*req.OrderID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid order id"))
			return
		}
		opReq.OrderID = &orderID
	}

	result, err := op(c.Request.Context(), opReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, dto.WalletOpResponse{
		TransactionID:   result.TransactionID.String(),
		AmountProcessed: result.AmountProcessed.String(),
		BalanceAfter:    result.BalanceAfter.String(),
	})
}

// GetWallet handles GET /api/v1/wallet?customerId=...|mobileNumber=...
func (h *WalletHandler) GetWallet(c *gin.Context) {
	query := ports.WalletQuery{MobileNumber: c.Query("mobileNumber")}
	if raw := c.Query("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.Validation("invalid customer id"))
			return
		}
		query.CustomerID = &id
	}

	info, err := h.walletSvc.GetWallet(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", dto.WalletResponse{
		CustomerID:   info.CustomerID.String(),
		Balance:      info.Balance.String(),
		Transactions: toTransactionResponses(info.Transactions),
	})
}

// GetOrderTransactions handles GET /api/v1/wallet/orders/:orderId.
func (h *WalletHandler) GetOrderTransactions(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	txns, err := h.walletSvc.GetOrderTransactions(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.OrderTransactionsResponse{
		Transactions: toTransactionResponses(txns),
	}
	resp.Count = len(resp.Transactions)
	response.OK(c, "", resp)
}

// GetTransaction handles GET /api/v1/wallet/transactions/:transactionId.
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	txnID, err := uuid.Parse(c.Param("transactionId"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	txn, err := h.walletSvc.GetTransaction(c.Request.Context(), txnID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", toTransactionResponse(txn))
}

// Reconcile handles GET /api/v1/wallet/:customerId/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	result, err := h.walletSvc.Reconcile(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", dto.ReconcileResponse{
		CustomerID:    result.CustomerID.String(),
		WalletBalance: result.WalletBalance.String(),
		LedgerSum:     result.LedgerSum.String(),
		Consistent:    result.Consistent,
	})
}

func toTransactionResponses(txns []domain.WalletTransaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, toTransactionResponse(&txns[i]))
	}
	return out
}

func toTransactionResponse(txn *domain.WalletTransaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:           txn.ID.String(),
		CustomerID:   txn.CustomerID.String(),
		Type:         string(txn.Type),
		Amount:       txn.Amount.String(),
		Note:         txn.Note,
		BalanceAfter: txn.BalanceAfter.String(),
		IsReversal:   txn.IsReversal(),
		CreatedAt:    txn.CreatedAt.UTC().Format(time.RFC3339),
	}
	if txn.OrderID != nil {
		s := txn.OrderID.String()
		resp.OrderID = &s
	}
	return resp
}
