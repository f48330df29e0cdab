package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, name, name_gujarati, category, unit, price, stock_quantity, is_active, created_at, updated_at`

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (id, name, name_gujarati, category, unit, price, stock_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.NameGujarati, p.Category, p.Unit,
		p.Price, p.StockQuantity, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID fetches a product by UUID.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	p := &domain.Product{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.NameGujarati, &p.Category, &p.Unit,
		&p.Price, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// List fetches products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}
	if params.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY category, name LIMIT $%d OFFSET $%d`,
		productColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p := domain.Product{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.NameGujarati, &p.Category, &p.Unit,
			&p.Price, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

// Update persists all mutable product fields.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $1, name_gujarati = $2, category = $3, unit = $4,
		price = $5, stock_quantity = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8`

	tag, err := r.pool.Exec(ctx, query,
		p.Name, p.NameGujarati, p.Category, p.Unit,
		p.Price, p.StockQuantity, p.IsActive, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product not found: %s", p.ID)
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product not found: %s", id)
	}
	return nil
}

// SetCategoryActive flips is_active for every product in a category.
func (r *ProductRepo) SetCategoryActive(ctx context.Context, category string, active bool) (int64, error) {
	query := `UPDATE products SET is_active = $1, updated_at = NOW() WHERE category = $2`

	tag, err := r.pool.Exec(ctx, query, active, category)
	if err != nil {
		return 0, fmt.Errorf("toggle category: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BulkUpdateField sets one column across the given ids. The field name is
// validated against domain.BulkUpdatableFields before it reaches SQL text.
func (r *ProductRepo) BulkUpdateField(ctx context.Context, ids []uuid.UUID, field string, value any) (int64, error) {
	if !domain.BulkUpdatableFields[field] {
		return 0, fmt.Errorf("field not bulk updatable: %s", field)
	}

	query := fmt.Sprintf(`UPDATE products SET %s = $1, updated_at = NOW() WHERE id = ANY($2)`, field)

	tag, err := r.pool.Exec(ctx, query, value, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk update products: %w", err)
	}
	return tag.RowsAffected(), nil
}
