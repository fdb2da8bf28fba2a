package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/returns"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

// Snapshot is the read-only input to BuildReport. The service layer
// assembles it from the repositories without holding any locks; the report
// tolerates slightly stale data and never blocks writers.
type Snapshot struct {
	Orders      []order.Order
	Returns     []returns.ReturnRequest
	StockLevels []stock.StockItem
	ViewCounts  map[uuid.UUID]int64
	Now         time.Time
}

// Options tunes the report computation
type Options struct {
	// TaxRate is the flat rate applied to total revenue for the tax
	// collected figure. Kept separate from the per-order tax stored at
	// checkout; see DESIGN.md for the rationale.
	TaxRate decimal.Decimal

	// TrendMonths is how many trailing months the monthly trend covers
	TrendMonths int

	// TopN caps the most-selling and most-viewed lists
	TopN int
}

// DefaultOptions returns the standard report configuration
func DefaultOptions() Options {
	return Options{
		TaxRate:     decimal.NewFromFloat(0.10),
		TrendMonths: 6,
		TopN:        5,
	}
}

// CategoryRevenue is one row of the revenue-by-category breakdown
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Units    int             `json:"units"`
}

// ItemSales is one row of the most-selling items list
type ItemSales struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ItemViews is one row of the most-viewed items list
type ItemViews struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Views     int64     `json:"views"`
}

// MonthlyTrend is one month of the trailing trend series
type MonthlyTrend struct {
	Month   string          `json:"month"` // YYYY-MM
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Returns int             `json:"returns"`
}

// Report is the full dashboard aggregate
type Report struct {
	TotalOrders           int               `json:"total_orders"`
	TotalRevenue          decimal.Decimal   `json:"total_revenue"`
	TaxCollected          decimal.Decimal   `json:"tax_collected"`
	NetRevenue            decimal.Decimal   `json:"net_revenue"`
	InventoryCost         decimal.Decimal   `json:"inventory_cost"`
	GrossProfit           decimal.Decimal   `json:"gross_profit"`
	ProfitMargin          decimal.Decimal   `json:"profit_margin"`
	CurrentInventoryValue decimal.Decimal   `json:"current_inventory_value"`
	ReturnedOrders        int               `json:"returned_orders"`
	ReturnRate            decimal.Decimal   `json:"return_rate"`
	RefundAmount          decimal.Decimal   `json:"refund_amount"`
	RevenueByCategory     []CategoryRevenue `json:"revenue_by_category"`
	MostSellingItems      []ItemSales       `json:"most_selling_items"`
	MostViewedItems       []ItemViews       `json:"most_viewed_items"`
	MonthlyTrends         []MonthlyTrend    `json:"monthly_trends"`
}

// BuildReport computes the full dashboard from a snapshot. It is a pure
// function: it mutates nothing and depends only on its inputs.
//
// Revenue counts every order that is not cancelled. COGS sums each sold
// line's unit cost as captured at reservation time, so later restocks at a
// different cost do not rewrite the margin on past sales.
func BuildReport(snap Snapshot, opts Options) Report {
	if opts.TrendMonths <= 0 {
		opts.TrendMonths = 6
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	now := snap.Now
	if now.IsZero() {
		now = time.Now()
	}

	hundred := decimal.NewFromInt(100)

	totalRevenue := decimal.Zero
	inventoryCost := decimal.Zero
	returnedOrders := 0
	byCategory := make(map[string]*CategoryRevenue)
	bySales := make(map[uuid.UUID]*ItemSales)
	productNames := make(map[uuid.UUID]string)

	for i := range snap.Orders {
		o := &snap.Orders[i]
		for _, item := range o.Items {
			productNames[item.ProductID] = item.Name
		}
		if o.Status == order.StatusCancelled {
			continue
		}
		if o.Status == order.StatusReturned || o.Status == order.StatusRefunded {
			returnedOrders++
		}
		totalRevenue = totalRevenue.Add(o.Total)

		for _, item := range o.Items {
			qty := decimal.NewFromInt(int64(item.Quantity))
			inventoryCost = inventoryCost.Add(item.UnitCost.Mul(qty))

			cat := byCategory[item.Category]
			if cat == nil {
				cat = &CategoryRevenue{Category: item.Category}
				byCategory[item.Category] = cat
			}
			cat.Revenue = cat.Revenue.Add(item.LineTotal())
			cat.Units += item.Quantity

			sale := bySales[item.ProductID]
			if sale == nil {
				sale = &ItemSales{ProductID: item.ProductID, Name: item.Name}
				bySales[item.ProductID] = sale
			}
			sale.Units += item.Quantity
			sale.Revenue = sale.Revenue.Add(item.LineTotal())
		}
	}

	taxCollected := totalRevenue.Mul(opts.TaxRate).Round(2)
	netRevenue := totalRevenue.Sub(taxCollected)
	grossProfit := netRevenue.Sub(inventoryCost)

	profitMargin := decimal.Zero
	if !netRevenue.IsZero() {
		profitMargin = grossProfit.Div(netRevenue).Mul(hundred).Round(2)
	}

	inventoryValue := decimal.Zero
	for i := range snap.StockLevels {
		inventoryValue = inventoryValue.Add(snap.StockLevels[i].Value())
	}

	refundAmount := decimal.Zero
	for i := range snap.Returns {
		if snap.Returns[i].Status == returns.StatusRefunded {
			refundAmount = refundAmount.Add(snap.Returns[i].RefundAmount)
		}
	}

	returnRate := decimal.Zero
	if len(snap.Orders) > 0 {
		returnRate = decimal.NewFromInt(int64(returnedOrders)).
			Div(decimal.NewFromInt(int64(len(snap.Orders)))).
			Mul(hundred).Round(2)
	}

	return Report{
		TotalOrders:           len(snap.Orders),
		TotalRevenue:          totalRevenue,
		TaxCollected:          taxCollected,
		NetRevenue:            netRevenue,
		InventoryCost:         inventoryCost,
		GrossProfit:           grossProfit,
		ProfitMargin:          profitMargin,
		CurrentInventoryValue: inventoryValue,
		ReturnedOrders:        returnedOrders,
		ReturnRate:            returnRate,
		RefundAmount:          refundAmount,
		RevenueByCategory:     sortedCategories(byCategory),
		MostSellingItems:      topSelling(bySales, opts.TopN),
		MostViewedItems:       topViewed(snap.ViewCounts, productNames, opts.TopN),
		MonthlyTrends:         monthlyTrends(snap, now, opts.TrendMonths),
	}
}

func sortedCategories(byCategory map[string]*CategoryRevenue) []CategoryRevenue {
	out := make([]CategoryRevenue, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func topSelling(bySales map[uuid.UUID]*ItemSales, n int) []ItemSales {
	out := make([]ItemSales, 0, len(bySales))
	for _, row := range bySales {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topViewed(views map[uuid.UUID]int64, names map[uuid.UUID]string, n int) []ItemViews {
	out := make([]ItemViews, 0, len(views))
	for pid, count := range views {
		name := names[pid]
		out = append(out, ItemViews{ProductID: pid, Name: name, Views: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// monthlyTrends buckets orders and returns by calendar month for the
// trailing window, oldest first. Months with no activity still appear.
func monthlyTrends(snap Snapshot, now time.Time, months int) []MonthlyTrend {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)

	index := make(map[string]*MonthlyTrend, months)
	out := make([]MonthlyTrend, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		out[i] = MonthlyTrend{Month: key}
		index[key] = &out[i]
	}

	for i := range snap.Orders {
		o := &snap.Orders[i]
		if o.Status == order.StatusCancelled {
			continue
		}
		if row, ok := index[o.CreatedAt.Format("2006-01")]; ok {
			row.Orders++
			row.Revenue = row.Revenue.Add(o.Total)
		}
	}
	for i := range snap.Returns {
		r := &snap.Returns[i]
		if row, ok := index[r.RequestedAt.Format("2006-01")]; ok {
			row.Returns++
		}
	}

	return out
}
