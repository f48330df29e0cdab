package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Customer Repo ---

type inMemoryCustomerRepo struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
}

func newInMemoryCustomerRepo() *inMemoryCustomerRepo {
	return &inMemoryCustomerRepo{customers: make(map[uuid.UUID]*domain.Customer)}
}

func (r *inMemoryCustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.MobileNumber == c.MobileNumber {
			return fmt.Errorf("duplicate mobile number: %w", ports.ErrDuplicateKey)
		}
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *inMemoryCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCustomerRepo) GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if c.MobileNumber == mobile {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByIDForUpdate relies on the locking transactor for serialization: the
// caller already holds the global write lock when this runs.
func (r *inMemoryCustomerRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryCustomerRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return fmt.Errorf("customer not found")
	}
	c.WalletBalance = balance
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryCustomerRepo) List(ctx context.Context, params ports.CustomerListParams) ([]domain.Customer, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Customer
	for _, c := range r.customers {
		if params.Search != "" {
			s := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(c.CustomerName), s) &&
				!strings.Contains(c.MobileNumber, params.Search) &&
				!strings.Contains(strings.ToLower(c.SocietyName), s) {
				continue
			}
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))
	return paginate(result, params.Page, params.PageSize), total, nil
}

func (r *inMemoryCustomerRepo) Update(ctx context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.customers[c.ID]
	if !ok {
		return fmt.Errorf("customer not found")
	}
	existing.CountryCode = c.CountryCode
	existing.MobileNumber = c.MobileNumber
	existing.FlatNumber = c.FlatNumber
	existing.SocietyName = c.SocietyName
	existing.CustomerName = c.CustomerName
	existing.Address = c.Address
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return fmt.Errorf("customer not found")
	}
	delete(r.customers, id)
	return nil
}

func (r *inMemoryCustomerRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.customers)), nil
}

// --- In-Memory Wallet Transaction Repo (append-only) ---

type inMemoryWalletTxnRepo struct {
	mu   sync.RWMutex
	txns []domain.WalletTransaction
}

func newInMemoryWalletTxnRepo() *inMemoryWalletTxnRepo {
	return &inMemoryWalletTxnRepo{}
}

func (r *inMemoryWalletTxnRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, *t)
	return nil
}

func (r *inMemoryWalletTxnRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.txns {
		if r.txns[i].ID == id {
			t := r.txns[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletTxnRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.WalletTransaction{}
	for _, t := range r.txns {
		if t.CustomerID == customerID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryWalletTxnRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.WalletTransaction{}
	for _, t := range r.txns {
		if t.OrderID != nil && *t.OrderID == orderID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryWalletTxnRepo) SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for i := range r.txns {
		if r.txns[i].CustomerID == customerID {
			sum = sum.Add(r.txns[i].SignedAmount())
		}
	}
	return sum, nil
}

func (r *inMemoryWalletTxnRepo) Totals(ctx context.Context, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	credits, debits := decimal.Zero, decimal.Zero
	for _, t := range r.txns {
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		if t.Type == domain.TransactionTypeCredit {
			credits = credits.Add(t.Amount)
		} else {
			debits = debits.Add(t.Amount)
		}
	}
	return credits, debits, nil
}

// --- In-Memory Product Repo ---

type inMemoryProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *inMemoryProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryProductRepo) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Product
	for _, p := range r.products {
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		if params.ActiveOnly && !p.IsActive {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	total := int64(len(result))
	return paginate(result, params.Page, params.PageSize), total, nil
}

func (r *inMemoryProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return fmt.Errorf("product not found")
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *inMemoryProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product not found")
	}
	delete(r.products, id)
	return nil
}

func (r *inMemoryProductRepo) SetCategoryActive(ctx context.Context, category string, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, p := range r.products {
		if p.Category == category {
			p.IsActive = active
			affected++
		}
	}
	return affected, nil
}

func (r *inMemoryProductRepo) BulkUpdateField(ctx context.Context, ids []uuid.UUID, field string, value any) (int64, error) {
	if !domain.BulkUpdatableFields[field] {
		return 0, fmt.Errorf("field not bulk updatable: %s", field)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, id := range ids {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		switch field {
		case "price":
			d, err := decimal.NewFromString(fmt.Sprintf("%v", value))
			if err != nil {
				return 0, err
			}
			p.Price = d
		case "unit":
			p.Unit = fmt.Sprintf("%v", value)
		case "category":
			p.Category = fmt.Sprintf("%v", value)
		case "is_active":
			b, ok := value.(bool)
			if !ok {
				return 0, fmt.Errorf("is_active must be boolean")
			}
			p.IsActive = b
		}
		affected++
	}
	return affected, nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("duplicate order number %s: %w", o.OrderNumber, ports.ErrDuplicateKey)
		}
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Order
	for _, o := range r.orders {
		if params.CustomerID != nil && o.CustomerID != *params.CustomerID {
			continue
		}
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		if params.From != nil && o.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && o.CreatedAt.After(*params.To) {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	total := int64(len(result))
	return paginate(result, params.Page, params.PageSize), total, nil
}

func (r *inMemoryOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return fmt.Errorf("order not found")
	}
	cp := *o
	cp.UpdatedAt = time.Now().UTC()
	r.orders[o.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentStatus *domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.Status = status
	if paymentStatus != nil {
		o.PaymentStatus = *paymentStatus
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order not found")
	}
	delete(r.orders, id)
	return nil
}

func (r *inMemoryOrderRepo) LastOrderNumberForDay(ctx context.Context, day time.Time) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := "ORD-" + day.Format("20060102") + "-"
	last := ""
	for _, o := range r.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) && o.OrderNumber > last {
			last = o.OrderNumber
		}
	}
	return last, nil
}

func (r *inMemoryOrderRepo) GetStats(ctx context.Context, from, to *time.Time) (*ports.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.OrderStats{
		Revenue:         decimal.Zero,
		WalletSettled:   decimal.Zero,
		AverageOrderVal: decimal.Zero,
	}
	totalValue := decimal.Zero
	var nonCancelled int64
	for _, o := range r.orders {
		if from != nil && o.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && o.CreatedAt.After(*to) {
			continue
		}
		stats.TotalOrders++
		switch o.Status {
		case domain.OrderStatusPending:
			stats.Pending++
		case domain.OrderStatusDelivered:
			stats.Delivered++
			stats.Revenue = stats.Revenue.Add(o.FinalAmount).Add(o.WalletAmountUsed)
		case domain.OrderStatusCancelled:
			stats.Cancelled++
		}
		if o.Status != domain.OrderStatusCancelled {
			stats.WalletSettled = stats.WalletSettled.Add(o.WalletAmountUsed)
			totalValue = totalValue.Add(o.TotalAmount)
			nonCancelled++
		}
	}
	if nonCancelled > 0 {
		stats.AverageOrderVal = totalValue.Div(decimal.NewFromInt(nonCancelled))
	}
	return stats, nil
}

func (r *inMemoryOrderRepo) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]ports.ProductSales, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := make(map[string]*ports.ProductSales)
	for _, o := range r.orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		if from != nil && o.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && o.CreatedAt.After(*to) {
			continue
		}
		for _, item := range o.Items {
			s, ok := byName[item.Name]
			if !ok {
				s = &ports.ProductSales{Name: item.Name, Quantity: decimal.Zero, Amount: decimal.Zero}
				byName[item.Name] = s
			}
			s.Quantity = s.Quantity.Add(item.Quantity)
			s.Amount = s.Amount.Add(item.Amount)
		}
	}
	var sales []ports.ProductSales
	for _, s := range byName {
		sales = append(sales, *s)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Amount.GreaterThan(sales[j].Amount) })
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

// --- Locking Transactor ---

// lockingTransactor serializes every transaction behind one mutex, standing
// in for the row lock a real database takes on SELECT FOR UPDATE. Commit or
// Rollback releases it; whichever runs first wins.
type lockingTransactor struct {
	mu sync.Mutex
}

func newLockingTransactor() *lockingTransactor {
	return &lockingTransactor{}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a pgx.Tx implementation for in-memory testing. It only carries
// the lock release; data access goes straight to the in-memory repos.
type memTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *memTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return items
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
