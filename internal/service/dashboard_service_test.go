package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dashboardTestDeps struct {
	svc          *DashboardServiceImpl
	orderRepo    *mocks.MockOrderRepository
	txnRepo      *mocks.MockWalletTransactionRepository
	customerRepo *mocks.MockCustomerRepository
	cache        *mocks.MockStatsCache
	ctrl         *gomock.Controller
}

func setupDashboardService(t *testing.T) *dashboardTestDeps {
	ctrl := gomock.NewController(t)
	d := &dashboardTestDeps{
		orderRepo:    mocks.NewMockOrderRepository(ctrl),
		txnRepo:      mocks.NewMockWalletTransactionRepository(ctrl),
		customerRepo: mocks.NewMockCustomerRepository(ctrl),
		cache:        mocks.NewMockStatsCache(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewDashboardService(d.orderRepo, d.txnRepo, d.customerRepo, d.cache, zerolog.Nop())
	return d
}

func TestDashboardService_GetStats_CacheMiss(t *testing.T) {
	d := setupDashboardService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, "dashboard:all:all").Return(nil, nil)
	d.orderRepo.EXPECT().GetStats(ctx, nil, nil).Return(&ports.OrderStats{
		TotalOrders: 42,
		Delivered:   30,
		Revenue:     dec("12500"),
	}, nil)
	d.txnRepo.EXPECT().Totals(ctx, nil, nil).Return(dec("8000"), dec("5600"), nil)
	d.customerRepo.EXPECT().Count(ctx).Return(int64(17), nil)
	d.orderRepo.EXPECT().TopProducts(ctx, nil, nil, 10).Return([]ports.ProductSales{
		{Name: "Wheat Flour", Quantity: dec("120"), Amount: dec("4800")},
	}, nil)
	d.cache.EXPECT().Set(ctx, "dashboard:all:all", gomock.Any(), statsCacheTTL).Return(nil)

	stats, err := d.svc.GetStats(ctx, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.Orders.TotalOrders)
	assert.Equal(t, int64(17), stats.CustomerCount)
	assert.True(t, stats.WalletCredits.Equal(dec("8000")))
	assert.Len(t, stats.TopProducts, 1)
}

func TestDashboardService_GetStats_CacheHit(t *testing.T) {
	d := setupDashboardService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	cached, err := json.Marshal(&ports.DashboardStats{CustomerCount: 99})
	require.NoError(t, err)

	d.cache.EXPECT().Get(ctx, "dashboard:all:all").Return(cached, nil)

	stats, err := d.svc.GetStats(ctx, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(99), stats.CustomerCount)
}

func TestDashboardService_GetStats_CacheFailureDegrades(t *testing.T) {
	d := setupDashboardService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cache.EXPECT().Get(ctx, "dashboard:all:all").Return(nil, assert.AnError)
	d.orderRepo.EXPECT().GetStats(ctx, nil, nil).Return(&ports.OrderStats{}, nil)
	d.txnRepo.EXPECT().Totals(ctx, nil, nil).Return(dec("0"), dec("0"), nil)
	d.customerRepo.EXPECT().Count(ctx).Return(int64(0), nil)
	d.orderRepo.EXPECT().TopProducts(ctx, nil, nil, 10).Return(nil, nil)
	d.cache.EXPECT().Set(ctx, "dashboard:all:all", gomock.Any(), statsCacheTTL).Return(assert.AnError)

	_, err := d.svc.GetStats(ctx, nil, nil)
	require.NoError(t, err)
}

func TestDashboardService_GetStats_RangeKey(t *testing.T) {
	d := setupDashboardService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	d.cache.EXPECT().Get(ctx, "dashboard:20260801:20260831").Return(nil, nil)
	d.orderRepo.EXPECT().GetStats(ctx, &from, &to).Return(&ports.OrderStats{}, nil)
	d.txnRepo.EXPECT().Totals(ctx, &from, &to).Return(dec("0"), dec("0"), nil)
	d.customerRepo.EXPECT().Count(ctx).Return(int64(0), nil)
	d.orderRepo.EXPECT().TopProducts(ctx, &from, &to, 10).Return(nil, nil)
	d.cache.EXPECT().Set(ctx, "dashboard:20260801:20260831", gomock.Any(), statsCacheTTL).Return(nil)

	_, err := d.svc.GetStats(ctx, &from, &to)
	require.NoError(t, err)
}
