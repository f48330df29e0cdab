package dto

// CreateCustomerRequest is the request body for customer registration.
type CreateCustomerRequest struct {
	CountryCode  string `json:"country_code" binding:"omitempty,max=5"`
	MobileNumber string `json:"mobile_number" binding:"required,mobile_in"`
	FlatNumber   string `json:"flat_number" binding:"omitempty,max=20"`
	SocietyName  string `json:"society_name" binding:"omitempty,max=100"`
	CustomerName string `json:"customer_name" binding:"required,min=1,max=100"`
	Address      string `json:"address" binding:"omitempty,max=500"`
}

// UpdateCustomerRequest is the request body for customer edits. Absent
// fields are left unchanged.
type UpdateCustomerRequest struct {
	CountryCode  *string `json:"country_code,omitempty" binding:"omitempty,max=5"`
	MobileNumber *string `json:"mobile_number,omitempty" binding:"omitempty,mobile_in"`
	FlatNumber   *string `json:"flat_number,omitempty" binding:"omitempty,max=20"`
	SocietyName  *string `json:"society_name,omitempty" binding:"omitempty,max=100"`
	CustomerName *string `json:"customer_name,omitempty" binding:"omitempty,min=1,max=100"`
	Address      *string `json:"address,omitempty" binding:"omitempty,max=500"`
}

// CreateProductRequest is the request body for adding a catalog entry.
type CreateProductRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	NameGujarati  string `json:"name_gujarati" binding:"omitempty,max=100"`
	Category      string `json:"category" binding:"omitempty,max=50"`
	Unit          string `json:"unit" binding:"omitempty,oneof=kg gm ltr ml pcs"`
	Price         string `json:"price" binding:"required,decimal_amount"`
	StockQuantity string `json:"stock_quantity" binding:"omitempty,decimal_amount"`
}

// UpdateProductRequest is the request body for product edits.
type UpdateProductRequest struct {
	Name          *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	NameGujarati  *string `json:"name_gujarati,omitempty" binding:"omitempty,max=100"`
	Category      *string `json:"category,omitempty" binding:"omitempty,max=50"`
	Unit          *string `json:"unit,omitempty" binding:"omitempty,oneof=kg gm ltr ml pcs"`
	Price         *string `json:"price,omitempty" binding:"omitempty,decimal_amount"`
	StockQuantity *string `json:"stock_quantity,omitempty" binding:"omitempty,decimal_amount"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// ToggleCategoryRequest flips is_active for a whole category. The category
// usually arrives as a path parameter; the body field is a fallback.
type ToggleCategoryRequest struct {
	Category string `json:"category" binding:"omitempty,max=50"`
	Active   *bool  `json:"active" binding:"required"`
}

// BulkUpdateRequest sets one field across many products.
type BulkUpdateRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1,dive,uuid"`
	Field      string   `json:"field" binding:"required"`
	Value      any      `json:"value" binding:"required"`
}

// OrderItemRequest is one submitted order line.
type OrderItemRequest struct {
	ProductID *string `json:"product_id,omitempty" binding:"omitempty,uuid"`
	Name      string  `json:"name" binding:"required,min=1,max=100"`
	Quantity  string  `json:"quantity" binding:"required,decimal_amount"`
	Unit      string  `json:"unit" binding:"omitempty,max=10"`
	Price     string  `json:"price" binding:"required,decimal_amount"`
}

// CreateOrderRequest is the request body for placing an order.
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" binding:"required,uuid"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount   string             `json:"discount" binding:"omitempty,decimal_amount"`
	UseWallet  bool               `json:"use_wallet"`
	Notes      string             `json:"notes" binding:"omitempty,max=500"`
}

// UpdateOrderRequest is the request body for editing an order.
type UpdateOrderRequest struct {
	Items     []OrderItemRequest `json:"items,omitempty" binding:"omitempty,min=1,dive"`
	Discount  *string            `json:"discount,omitempty" binding:"omitempty,decimal_amount"`
	UseWallet bool               `json:"use_wallet"`
	Notes     *string            `json:"notes,omitempty" binding:"omitempty,max=500"`
}

// UpdateOrderStatusRequest moves an order through its lifecycle.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending delivered cancelled"`
}

// WalletOpRequest is the request body for adding or deducting funds.
type WalletOpRequest struct {
	CustomerID string  `json:"customer_id" binding:"required,uuid"`
	Amount     string  `json:"amount" binding:"required,decimal_amount"`
	Note       string  `json:"note" binding:"omitempty,max=200"`
	OrderID    *string `json:"order_id,omitempty" binding:"omitempty,uuid"`
}

// WalletOpResponse reports a completed ledger operation.
type WalletOpResponse struct {
	TransactionID   string `json:"transaction_id"`
	AmountProcessed string `json:"amount_processed"`
	BalanceAfter    string `json:"balance_after"`
}

// WalletResponse is the balance plus history for one customer.
type WalletResponse struct {
	CustomerID   string                `json:"customer_id"`
	Balance      string                `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

// OrderTransactionsResponse lists the ledger entries tied to one order.
type OrderTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID           string  `json:"id"`
	CustomerID   string  `json:"customer_id"`
	OrderID      *string `json:"order_id,omitempty"`
	Type         string  `json:"type"`
	Amount       string  `json:"amount"`
	Note         string  `json:"note,omitempty"`
	BalanceAfter string  `json:"balance_after"`
	IsReversal   bool    `json:"is_reversal,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ReconcileResponse reports a balance-vs-ledger audit.
type ReconcileResponse struct {
	CustomerID    string `json:"customer_id"`
	WalletBalance string `json:"wallet_balance"`
	LedgerSum     string `json:"ledger_sum"`
	Consistent    bool   `json:"consistent"`
}

// ListResponse wraps a paginated collection.
type ListResponse struct {
	Items      any   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse computes the page count for a paginated collection.
func NewListResponse(items any, total int64, page, pageSize int) ListResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
