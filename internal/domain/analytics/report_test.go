package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/returns"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

func newOrder(t *testing.T, num string, items []order.Item) *order.Order {
	t.Helper()
	o, err := order.NewOrder(num,
		order.Customer{Name: "Meera Pillai"}, order.Address{},
		items, "card", order.Pricing{})
	require.NoError(t, err)
	return o
}

func deliveredOrder(t *testing.T, num string, items []order.Item) *order.Order {
	t.Helper()
	o := newOrder(t, num, items)
	for _, s := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		require.NoError(t, o.TransitionTo(s, "admin", ""))
	}
	return o
}

func refundedReturn(t *testing.T, o *order.Order, qty int) returns.ReturnRequest {
	t.Helper()
	r, err := returns.NewReturnRequest("RET-1", o, returns.ReasonDefective, "",
		[]returns.Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: qty}}, nil)
	require.NoError(t, err)
	require.NoError(t, r.Approve("admin", ""))
	require.NoError(t, r.SchedulePickup(time.Now(), "admin"))
	require.NoError(t, r.MarkPickedUp("admin"))
	require.NoError(t, r.MarkReceived("admin"))
	require.NoError(t, r.ProcessRefund("admin", "original_payment"))
	return *r
}

func TestBuildReportRevenueFigures(t *testing.T) {
	// One order totalling 10000 with no tax or shipping at checkout; the
	// report applies its flat 10% rate on top.
	items := []order.Item{{
		ProductID: uuid.New(),
		Name:      "Sheesham Wardrobe",
		Category:  "storage",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(10000),
		UnitCost:  decimal.NewFromInt(6000),
	}}
	o := newOrder(t, "FC-1", items)

	report := BuildReport(Snapshot{Orders: []order.Order{*o}}, DefaultOptions())

	assert.Equal(t, 1, report.TotalOrders)
	assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(10000)))
	assert.True(t, report.TaxCollected.Equal(decimal.NewFromInt(1000)), "tax = %s", report.TaxCollected)
	assert.True(t, report.NetRevenue.Equal(decimal.NewFromInt(9000)), "net = %s", report.NetRevenue)
	assert.True(t, report.InventoryCost.Equal(decimal.NewFromInt(6000)))
	assert.True(t, report.GrossProfit.Equal(decimal.NewFromInt(3000)))
	assert.True(t, report.ProfitMargin.Equal(decimal.NewFromFloat(33.33)), "margin = %s", report.ProfitMargin)
}

func TestBuildReportExcludesCancelled(t *testing.T) {
	items := []order.Item{{
		ProductID: uuid.New(),
		Name:      "Rattan Lounge Chair",
		Category:  "chairs",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(4000),
		UnitCost:  decimal.NewFromInt(2500),
	}}
	kept := newOrder(t, "FC-1", items)
	cancelled := newOrder(t, "FC-2", items)
	require.NoError(t, cancelled.TransitionTo(order.StatusCancelled, "admin", ""))

	report := BuildReport(Snapshot{Orders: []order.Order{*kept, *cancelled}}, DefaultOptions())

	assert.Equal(t, 2, report.TotalOrders)
	assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(4000)), "cancelled order excluded from revenue")
	assert.True(t, report.InventoryCost.Equal(decimal.NewFromInt(2500)))
}

func TestBuildReportReturns(t *testing.T) {
	items := []order.Item{{
		ProductID: uuid.New(),
		Name:      "Mango Wood Bed",
		Category:  "beds",
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(5000),
		UnitCost:  decimal.NewFromInt(3000),
	}}
	o := deliveredOrder(t, "FC-1", items)
	other := deliveredOrder(t, "FC-2", items)

	ret := refundedReturn(t, o, 1)
	require.NoError(t, o.MarkReturned("workflow", ""))
	require.NoError(t, o.MarkRefunded("workflow", ""))

	report := BuildReport(Snapshot{
		Orders:  []order.Order{*o, *other},
		Returns: []returns.ReturnRequest{ret},
	}, DefaultOptions())

	assert.Equal(t, 1, report.ReturnedOrders)
	assert.True(t, report.ReturnRate.Equal(decimal.NewFromInt(50)), "rate = %s", report.ReturnRate)
	assert.True(t, report.RefundAmount.Equal(decimal.NewFromInt(5000)), "one unit at 5000 refunded")
}

func TestBuildReportInventoryValue(t *testing.T) {
	a, err := stock.NewStockItem(uuid.New(), "Oak Desk", 4, decimal.NewFromInt(2000))
	require.NoError(t, err)
	b, err := stock.NewStockItem(uuid.New(), "Pine Shelf", 3, decimal.NewFromInt(1000))
	require.NoError(t, err)

	report := BuildReport(Snapshot{StockLevels: []stock.StockItem{*a, *b}}, DefaultOptions())

	assert.True(t, report.CurrentInventoryValue.Equal(decimal.NewFromInt(11000)))
	assert.True(t, report.ProfitMargin.IsZero(), "zero net revenue yields zero margin")
}

func TestBuildReportGroupings(t *testing.T) {
	chairID := uuid.New()
	tableID := uuid.New()
	items := []order.Item{
		{ProductID: chairID, Name: "Cane Chair", Category: "chairs", Quantity: 3, UnitPrice: decimal.NewFromInt(1000), UnitCost: decimal.NewFromInt(600)},
		{ProductID: tableID, Name: "Glass Table", Category: "tables", Quantity: 1, UnitPrice: decimal.NewFromInt(8000), UnitCost: decimal.NewFromInt(5000)},
	}
	o := newOrder(t, "FC-1", items)

	report := BuildReport(Snapshot{
		Orders: []order.Order{*o},
		ViewCounts: map[uuid.UUID]int64{
			chairID: 40,
			tableID: 90,
		},
	}, DefaultOptions())

	require.Len(t, report.RevenueByCategory, 2)
	assert.Equal(t, "tables", report.RevenueByCategory[0].Category, "highest revenue first")
	assert.True(t, report.RevenueByCategory[0].Revenue.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, 3, report.RevenueByCategory[1].Units)

	require.Len(t, report.MostSellingItems, 2)
	assert.Equal(t, "Cane Chair", report.MostSellingItems[0].Name, "most units first")

	require.Len(t, report.MostViewedItems, 2)
	assert.Equal(t, "Glass Table", report.MostViewedItems[0].Name)
	assert.Equal(t, int64(90), report.MostViewedItems[0].Views)
}

func TestBuildReportMonthlyTrends(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	items := []order.Item{{
		ProductID: uuid.New(),
		Name:      "Bar Stool",
		Category:  "chairs",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(1500),
		UnitCost:  decimal.NewFromInt(900),
	}}

	current := newOrder(t, "FC-1", items)
	current.CreatedAt = now
	lastMonth := newOrder(t, "FC-2", items)
	lastMonth.CreatedAt = now.AddDate(0, -1, 0)
	ancient := newOrder(t, "FC-3", items)
	ancient.CreatedAt = now.AddDate(0, -12, 0)

	report := BuildReport(Snapshot{
		Orders: []order.Order{*current, *lastMonth, *ancient},
		Now:    now,
	}, DefaultOptions())

	require.Len(t, report.MonthlyTrends, 6)
	assert.Equal(t, "2026-03", report.MonthlyTrends[0].Month, "oldest month first")
	assert.Equal(t, "2026-08", report.MonthlyTrends[5].Month)
	assert.Equal(t, 1, report.MonthlyTrends[5].Orders)
	assert.Equal(t, 1, report.MonthlyTrends[4].Orders)
	assert.Equal(t, 0, report.MonthlyTrends[0].Orders, "orders outside the window are dropped")
}
