package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductServiceImpl implements ports.ProductService.
type ProductServiceImpl struct {
	productRepo ports.ProductRepository
	log         zerolog.Logger
}

// NewProductService creates a new ProductServiceImpl.
func NewProductService(productRepo ports.ProductRepository, log zerolog.Logger) *ProductServiceImpl {
	return &ProductServiceImpl{productRepo: productRepo, log: log}
}

// Create adds a product to the catalog. New products start active.
func (s *ProductServiceImpl) Create(ctx context.Context, req ports.CreateProductRequest) (*domain.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("product name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperror.Validation("price cannot be negative")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          req.Name,
		NameGujarati:  req.NameGujarati,
		Category:      req.Category,
		Unit:          req.Unit,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create product: %w", err))
	}

	s.log.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Msg("product created")

	return product, nil
}

// GetByID fetches one product.
func (s *ProductServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get product: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrProductNotFound()
	}
	return product, nil
}

// List returns a page of products plus the total count.
func (s *ProductServiceImpl) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 50
	}
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list products: %w", err))
	}
	return products, total, nil
}

// Update edits product fields.
func (s *ProductServiceImpl) Update(ctx context.Context, id uuid.UUID, req ports.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get product: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrProductNotFound()
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperror.Validation("product name cannot be empty")
		}
		product.Name = *req.Name
	}
	if req.NameGujarati != nil {
		product.NameGujarati = *req.NameGujarati
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperror.Validation("price cannot be negative")
		}
		product.Price = *req.Price
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update product: %w", err))
	}
	return product, nil
}

// Delete removes a product from the catalog.
func (s *ProductServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get product: %w", err))
	}
	if product == nil {
		return apperror.ErrProductNotFound()
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("delete product: %w", err))
	}

	s.log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

// ToggleCategory activates or deactivates every product in a category and
// returns how many were touched.
func (s *ProductServiceImpl) ToggleCategory(ctx context.Context, category string, active bool) (int64, error) {
	if strings.TrimSpace(category) == "" {
		return 0, apperror.Validation("category is required")
	}
	affected, err := s.productRepo.SetCategoryActive(ctx, category, active)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("toggle category: %w", err))
	}

	s.log.Info().
		Str("category", category).
		Bool("active", active).
		Int64("affected", affected).
		Msg("category toggled")

	return affected, nil
}

// BulkUpdateField sets one whitelisted field across many products.
func (s *ProductServiceImpl) BulkUpdateField(ctx context.Context, ids []uuid.UUID, field string, value any) (int64, error) {
	if len(ids) == 0 {
		return 0, apperror.Validation("at least one product id is required")
	}
	if !domain.BulkUpdatableFields[field] {
		return 0, apperror.ErrInvalidBulkField(field)
	}
	affected, err := s.productRepo.BulkUpdateField(ctx, ids, field, value)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("bulk update %s: %w", field, err))
	}

	s.log.Info().
		Str("field", field).
		Int("requested", len(ids)).
		Int64("affected", affected).
		Msg("products bulk updated")

	return affected, nil
}
