package analytics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/analytics"
	domaincatalog "github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
	infracatalog "github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/persistence"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	store := kv.NewMemoryStore()
	orders := persistence.NewOrderRepository(store)
	returnsRepo := persistence.NewReturnRepository(store)
	stockRepo := persistence.NewStockRepository(store)

	deskID := uuid.New()
	provider := infracatalog.NewInMemoryProvider(
		domaincatalog.Product{ID: deskID, Name: "Teak Desk", Category: "desks", Price: decimal.NewFromInt(9000)},
	)
	provider.RecordView(deskID)
	provider.RecordView(deskID)

	item, err := stock.NewStockItem(deskID, "Teak Desk", 8, decimal.NewFromInt(5000))
	require.NoError(t, err)
	require.NoError(t, stockRepo.Save(ctx, item))

	o, err := order.NewOrder("FC-20260820-0001",
		order.Customer{Name: "Farhana Islam"},
		order.Address{},
		[]order.Item{{
			ProductID: deskID,
			Name:      "Teak Desk",
			Category:  "desks",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(9000),
			UnitCost:  decimal.NewFromInt(5000),
		}},
		"card",
		order.Pricing{TaxRate: decimal.Zero},
	)
	require.NoError(t, err)
	require.NoError(t, orders.Save(ctx, o))

	svc := NewService(orders, returnsRepo, stockRepo, provider, analytics.Options{
		TaxRate:     decimal.NewFromFloat(0.10),
		TrendMonths: 6,
		TopN:        5,
	}, zap.NewNop())

	report, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalOrders)
	assert.True(t, decimal.NewFromInt(9000).Equal(report.TotalRevenue), "revenue was %s", report.TotalRevenue)
	assert.True(t, decimal.NewFromInt(900).Equal(report.TaxCollected))
	assert.True(t, decimal.NewFromInt(8100).Equal(report.NetRevenue))
	assert.True(t, decimal.NewFromInt(5000).Equal(report.InventoryCost))
	assert.True(t, decimal.NewFromInt(40000).Equal(report.CurrentInventoryValue))

	require.Len(t, report.MostViewedItems, 1)
	assert.Equal(t, int64(2), report.MostViewedItems[0].Views)
	assert.Equal(t, "Teak Desk", report.MostViewedItems[0].Name)

	require.Len(t, report.RevenueByCategory, 1)
	assert.Equal(t, "desks", report.RevenueByCategory[0].Category)

	assert.Len(t, report.MonthlyTrends, 6)
}

func TestDashboardWithoutViewBackend(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	svc := NewService(
		persistence.NewOrderRepository(store),
		persistence.NewReturnRepository(store),
		persistence.NewStockRepository(store),
		nil,
		analytics.DefaultOptions(),
		zap.NewNop(),
	)

	report, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.TotalOrders)
	assert.Empty(t, report.MostViewedItems)
	assert.True(t, report.ProfitMargin.IsZero())
}
