package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	NameGujarati  string          `json:"name_gujarati,omitempty"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"` // kg, gm, ltr, pcs
	Price         decimal.Decimal `json:"price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BulkUpdatableFields lists the product columns the bulk-update operation
// may touch. Everything else is rejected.
var BulkUpdatableFields = map[string]bool{
	"price":     true,
	"unit":      true,
	"category":  true,
	"is_active": true,
}
