package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the wallet aggregate root. WalletBalance is mutated only by
// the wallet ledger service; profile fields are edited independently.
type Customer struct {
	ID            uuid.UUID       `json:"id"`
	CountryCode   string          `json:"country_code"`
	MobileNumber  string          `json:"mobile_number"`
	FlatNumber    string          `json:"flat_number"`
	SocietyName   string          `json:"society_name"`
	CustomerName  string          `json:"customer_name"`
	Address       string          `json:"address"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FullMobile returns the mobile number with its country code prefix.
func (c *Customer) FullMobile() string {
	return c.CountryCode + c.MobileNumber
}
