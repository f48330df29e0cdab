package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/pkg/apperror"

	"github.com/rs/zerolog"
)

const statsCacheTTL = 60 * time.Second

// DashboardServiceImpl implements ports.DashboardService. Aggregates are
// cached briefly; a cache outage degrades to recomputation, never to an
// error.
type DashboardServiceImpl struct {
	orderRepo    ports.OrderRepository
	txnRepo      ports.WalletTransactionRepository
	customerRepo ports.CustomerRepository
	cache        ports.StatsCache
	log          zerolog.Logger
}

// NewDashboardService creates a new DashboardServiceImpl. cache may be nil.
func NewDashboardService(
	orderRepo ports.OrderRepository,
	txnRepo ports.WalletTransactionRepository,
	customerRepo ports.CustomerRepository,
	cache ports.StatsCache,
	log zerolog.Logger,
) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		orderRepo:    orderRepo,
		txnRepo:      txnRepo,
		customerRepo: customerRepo,
		cache:        cache,
		log:          log,
	}
}

// GetStats returns the dashboard aggregate for an optional date range.
func (s *DashboardServiceImpl) GetStats(ctx context.Context, from, to *time.Time) (*ports.DashboardStats, error) {
	key := statsKey(from, to)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed")
		} else if raw != nil {
			var stats ports.DashboardStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	orderStats, err := s.orderRepo.GetStats(ctx, from, to)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("order stats: %w", err))
	}
	credits, debits, err := s.txnRepo.Totals(ctx, from, to)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet totals: %w", err))
	}
	customers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("customer count: %w", err))
	}
	topProducts, err := s.orderRepo.TopProducts(ctx, from, to, 10)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("top products: %w", err))
	}

	stats := &ports.DashboardStats{
		Orders:        *orderStats,
		WalletCredits: credits,
		WalletDebits:  debits,
		CustomerCount: customers,
		TopProducts:   topProducts,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, raw, statsCacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("stats cache write failed")
			}
		}
	}

	return stats, nil
}

func statsKey(from, to *time.Time) string {
	f, t := "all", "all"
	if from != nil {
		f = from.Format("20060102")
	}
	if to != nil {
		t = to.Format("20060102")
	}
	return fmt.Sprintf("dashboard:%s:%s", f, t)
}
