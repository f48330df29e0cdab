package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWalletTransaction_SignedAmount(t *testing.T) {
	credit := &WalletTransaction{Type: TransactionTypeCredit, Amount: decimal.NewFromInt(200)}
	debit := &WalletTransaction{Type: TransactionTypeDebit, Amount: decimal.NewFromInt(300)}

	assert.True(t, credit.SignedAmount().Equal(decimal.NewFromInt(200)))
	assert.True(t, debit.SignedAmount().Equal(decimal.NewFromInt(-300)))
}

func TestWalletTransaction_IsReversal(t *testing.T) {
	plain := &WalletTransaction{Type: TransactionTypeCredit}
	assert.False(t, plain.IsReversal())

	origID := uuid.New()
	reversal := &WalletTransaction{
		Type: TransactionTypeCredit,
		Metadata: &TransactionMetadata{
			IsReversal:            true,
			OriginalTransactionID: &origID,
			ReversalReason:        "order cancelled",
		},
	}
	assert.True(t, reversal.IsReversal())
}

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to delivered", OrderStatusPending, OrderStatusDelivered, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, true},
		{"delivered to pending", OrderStatusDelivered, OrderStatusPending, false},
		{"cancelled to pending", OrderStatusCancelled, OrderStatusPending, false},
		{"cancelled to delivered", OrderStatusCancelled, OrderStatusDelivered, false},
		{"no-op transition", OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.want, o.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_IsTerminal(t *testing.T) {
	assert.False(t, (&Order{Status: OrderStatusPending}).IsTerminal())
	assert.False(t, (&Order{Status: OrderStatusDelivered}).IsTerminal())
	assert.True(t, (&Order{Status: OrderStatusCancelled}).IsTerminal())
}

func TestOrder_ItemDetails(t *testing.T) {
	o := &Order{
		Items: []OrderItem{
			{Name: "Toor Dal", Quantity: decimal.NewFromInt(2), Unit: "kg", Price: decimal.NewFromInt(150), Amount: decimal.NewFromInt(300)},
			{Name: "Ghee", Quantity: decimal.NewFromInt(1), Unit: "ltr", Price: decimal.NewFromInt(550), Amount: decimal.NewFromInt(550)},
		},
	}

	details := o.ItemDetails()
	assert.Len(t, details, 2)
	assert.Equal(t, "Toor Dal", details[0].Name)
	assert.True(t, details[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "ltr", details[1].Unit)
}

func TestCustomer_FullMobile(t *testing.T) {
	c := &Customer{CountryCode: "+91", MobileNumber: "9876543210"}
	assert.Equal(t, "+919876543210", c.FullMobile())
}

func TestBulkUpdatableFields(t *testing.T) {
	assert.True(t, BulkUpdatableFields["price"])
	assert.True(t, BulkUpdatableFields["is_active"])
	assert.False(t, BulkUpdatableFields["id"])
	assert.False(t, BulkUpdatableFields["created_at"])
}
