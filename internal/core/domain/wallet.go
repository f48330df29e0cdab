package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a wallet movement.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// ItemDetail is a snapshot of an order line carried on a settlement
// transaction, so wallet history stays meaningful after order edits.
type ItemDetail struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

// TransactionMetadata is the optional bag attached to a ledger entry.
// Reversals and order-edit adjustments record their intent here; the ledger
// itself never interprets these fields.
type TransactionMetadata struct {
	OriginalAmount        *decimal.Decimal `json:"original_amount,omitempty"`
	AdjustmentReason      string           `json:"adjustment_reason,omitempty"`
	EditHistory           bool             `json:"edit_history,omitempty"`
	OriginalTransactionID *uuid.UUID       `json:"original_transaction_id,omitempty"`
	ReversalReason        string           `json:"reversal_reason,omitempty"`
	IsReversal            bool             `json:"is_reversal,omitempty"`
	ItemDetails           []ItemDetail     `json:"item_details,omitempty"`
}

// WalletTransaction is an immutable ledger entry. Rows are only ever
// inserted; balance history is reconstructed by replaying them in
// CreatedAt order.
type WalletTransaction struct {
	ID           uuid.UUID            `json:"id"`
	CustomerID   uuid.UUID            `json:"customer_id"`
	OrderID      *uuid.UUID           `json:"order_id,omitempty"`
	Type         TransactionType      `json:"type"`
	Amount       decimal.Decimal      `json:"amount"`
	Note         string               `json:"note,omitempty"`
	BalanceAfter decimal.Decimal      `json:"balance_after"`
	Metadata     *TransactionMetadata `json:"metadata,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// SignedAmount returns +amount for credits and -amount for debits.
// Summing signed amounts over a customer's ledger must equal the
// customer's WalletBalance.
func (t *WalletTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsReversal reports whether this entry compensates a prior transaction.
func (t *WalletTransaction) IsReversal() bool {
	return t.Metadata != nil && t.Metadata.IsReversal
}
