package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/domain"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CustomerServiceImpl implements ports.CustomerService. Profile management
// only — wallet balances are owned by the wallet ledger service.
type CustomerServiceImpl struct {
	customerRepo ports.CustomerRepository
	log          zerolog.Logger
}

// NewCustomerService creates a new CustomerServiceImpl.
func NewCustomerService(customerRepo ports.CustomerRepository, log zerolog.Logger) *CustomerServiceImpl {
	return &CustomerServiceImpl{customerRepo: customerRepo, log: log}
}

// Create registers a new customer with a zero wallet balance.
func (s *CustomerServiceImpl) Create(ctx context.Context, req ports.CreateCustomerRequest) (*domain.Customer, error) {
	mobile := strings.TrimSpace(req.MobileNumber)
	if mobile == "" {
		return nil, apperror.Validation("mobile number is required")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, apperror.Validation("customer name is required")
	}

	existing, err := s.customerRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check mobile: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateMobile()
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:            uuid.New(),
		CountryCode:   defaultIfEmpty(req.CountryCode, "+91"),
		MobileNumber:  mobile,
		FlatNumber:    req.FlatNumber,
		SocietyName:   req.SocietyName,
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		WalletBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		// The mobile check above races with concurrent creates; the unique
		// index is the authority.
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, apperror.ErrDuplicateMobile()
		}
		return nil, apperror.InternalError(fmt.Errorf("create customer: %w", err))
	}

	s.log.Info().
		Str("customer_id", customer.ID.String()).
		Str("mobile", customer.MobileNumber).
		Msg("customer created")

	return customer, nil
}

// GetByID fetches one customer.
func (s *CustomerServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}
	return customer, nil
}

// GetByMobile fetches one customer by mobile number.
func (s *CustomerServiceImpl) GetByMobile(ctx context.Context, mobile string) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByMobile(ctx, strings.TrimSpace(mobile))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer by mobile: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}
	return customer, nil
}

// List returns a page of customers plus the total count.
func (s *CustomerServiceImpl) List(ctx context.Context, params ports.CustomerListParams) ([]domain.Customer, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, normalizeCustomerPage(params))
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list customers: %w", err))
	}
	return customers, total, nil
}

// Update edits profile fields. Wallet balance is untouchable here.
func (s *CustomerServiceImpl) Update(ctx context.Context, id uuid.UUID, req ports.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrCustomerNotFound()
	}

	if req.MobileNumber != nil {
		mobile := strings.TrimSpace(*req.MobileNumber)
		if mobile == "" {
			return nil, apperror.Validation("mobile number cannot be empty")
		}
		if mobile != customer.MobileNumber {
			existing, err := s.customerRepo.GetByMobile(ctx, mobile)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("check mobile: %w", err))
			}
			if existing != nil {
				return nil, apperror.ErrDuplicateMobile()
			}
			customer.MobileNumber = mobile
		}
	}
	if req.CountryCode != nil {
		customer.CountryCode = *req.CountryCode
	}
	if req.FlatNumber != nil {
		customer.FlatNumber = *req.FlatNumber
	}
	if req.SocietyName != nil {
		customer.SocietyName = *req.SocietyName
	}
	if req.CustomerName != nil {
		if strings.TrimSpace(*req.CustomerName) == "" {
			return nil, apperror.Validation("customer name cannot be empty")
		}
		customer.CustomerName = *req.CustomerName
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, apperror.ErrDuplicateMobile()
		}
		return nil, apperror.InternalError(fmt.Errorf("update customer: %w", err))
	}
	return customer, nil
}

// Delete removes a customer.
func (s *CustomerServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return apperror.ErrCustomerNotFound()
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ports.ErrRowReferenced) {
			return apperror.ErrCustomerHasActivity()
		}
		return apperror.InternalError(fmt.Errorf("delete customer: %w", err))
	}

	s.log.Info().Str("customer_id", id.String()).Msg("customer deleted")
	return nil
}

func normalizeCustomerPage(params ports.CustomerListParams) ports.CustomerListParams {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return params
}

func defaultIfEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
