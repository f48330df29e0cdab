package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct(t *testing.T) {
	note := "  <b>note</b>  "
	req := WalletOpRequest{
		CustomerID: " 550e8400-e29b-41d4-a716-446655440000 ",
		Amount:     "100",
		Note:       "<script>alert(1)</script>",
		OrderID:    &note,
	}

	SanitizeStruct(&req)

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", req.CustomerID)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", req.Note)
	assert.Equal(t, "&lt;b&gt;note&lt;/b&gt;", *req.OrderID)
}

func TestSanitizeStruct_NonStruct(t *testing.T) {
	s := "plain"
	SanitizeStruct(&s) // no panic
	SanitizeStruct(nil)
}

func TestValidateMobileIN(t *testing.T) {
	valid := []string{"9876543210", "6000000000", "7123456789"}
	invalid := []string{"12345", "0876543210", "98765432101", "98765abc10", ""}

	for _, m := range valid {
		assert.True(t, mobileRe.MatchString(m), m)
	}
	for _, m := range invalid {
		assert.False(t, mobileRe.MatchString(m), m)
	}
}

func TestNewListResponse_Pages(t *testing.T) {
	resp := NewListResponse(nil, 45, 2, 20)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(45), resp.Total)

	resp = NewListResponse(nil, 0, 1, 20)
	assert.Equal(t, 0, resp.TotalPages)
}
