package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domaincatalog "github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/promo"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
	infracatalog "github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/event"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/persistence"
)

type fixture struct {
	service *Service
	orders  *persistence.OrderRepository
	stock   *persistence.StockRepository
	coupons *persistence.CouponRepository
	catalog *infracatalog.InMemoryProvider

	chairID uuid.UUID
	tableID uuid.UUID
}

func defaultPolicy() CheckoutPolicy {
	return CheckoutPolicy{
		TaxRate:               decimal.NewFromFloat(0.18),
		ShippingFee:           decimal.NewFromInt(200),
		FreeShippingThreshold: decimal.NewFromInt(10000),
		LowStockThreshold:     5,
	}
}

func newFixture(t *testing.T, policy CheckoutPolicy) *fixture {
	t.Helper()
	ctx := context.Background()

	store := kv.NewMemoryStore()
	orders := persistence.NewOrderRepository(store)
	stockRepo := persistence.NewStockRepository(store)
	coupons := persistence.NewCouponRepository(store)

	f := &fixture{
		orders:  orders,
		stock:   stockRepo,
		coupons: coupons,
		chairID: uuid.New(),
		tableID: uuid.New(),
	}

	f.catalog = infracatalog.NewInMemoryProvider(
		domaincatalog.Product{ID: f.chairID, Name: "Walnut Chair", Category: "seating", Price: decimal.NewFromInt(2500)},
		domaincatalog.Product{ID: f.tableID, Name: "Oak Table", Category: "tables", Price: decimal.NewFromInt(6000)},
	)

	chair, err := stock.NewStockItem(f.chairID, "Walnut Chair", 50, decimal.NewFromInt(1400))
	require.NoError(t, err)
	require.NoError(t, stockRepo.Save(ctx, chair))
	table, err := stock.NewStockItem(f.tableID, "Oak Table", 10, decimal.NewFromInt(3500))
	require.NoError(t, err)
	require.NoError(t, stockRepo.Save(ctx, table))

	bus := event.NewInMemoryEventBus(zap.NewNop())
	f.service = NewService(orders, stockRepo, coupons, f.catalog, bus, zap.NewNop(), policy)
	return f
}

func checkoutRequest(lines ...CreateOrderLine) CreateOrderRequest {
	return CreateOrderRequest{
		Customer:      CustomerRequest{Name: "Asha Rahman", Email: "asha@example.com"},
		PaymentMethod: "card",
		Lines:         lines,
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path reserves stock and prices the order", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())

		resp, err := f.service.CreateOrder(ctx, checkoutRequest(
			CreateOrderLine{ProductID: f.chairID, Quantity: 2},
		))
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending.String(), resp.Status)
		assert.True(t, decimal.NewFromInt(5000).Equal(resp.Subtotal))
		// below the free-shipping threshold: tax 5000*0.18=900, shipping 200
		assert.True(t, decimal.NewFromInt(900).Equal(resp.Tax), "tax was %s", resp.Tax)
		assert.True(t, decimal.NewFromInt(200).Equal(resp.ShippingCost))
		assert.True(t, decimal.NewFromInt(6100).Equal(resp.Total), "total was %s", resp.Total)

		item, err := f.stock.FindByProduct(ctx, f.chairID)
		require.NoError(t, err)
		assert.Equal(t, 48, item.Available)

		stored, err := f.orders.FindByOrderNumber(ctx, resp.OrderNumber)
		require.NoError(t, err)
		// unit cost captured from the ledger at reservation time
		assert.True(t, decimal.NewFromInt(1400).Equal(stored.Items[0].UnitCost))
	})

	t.Run("free shipping at the threshold", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())

		resp, err := f.service.CreateOrder(ctx, checkoutRequest(
			CreateOrderLine{ProductID: f.tableID, Quantity: 2}, // 12000
		))
		require.NoError(t, err)
		assert.True(t, resp.ShippingCost.IsZero())
	})

	t.Run("insufficient stock on one line leaves every line untouched", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())

		_, err := f.service.CreateOrder(ctx, checkoutRequest(
			CreateOrderLine{ProductID: f.chairID, Quantity: 4},
			CreateOrderLine{ProductID: f.tableID, Quantity: 11}, // only 10 on hand
		))
		require.Error(t, err)
		assert.Equal(t, "INSUFFICIENT_STOCK", shared.ErrorCode(err))

		chair, err := f.stock.FindByProduct(ctx, f.chairID)
		require.NoError(t, err)
		assert.Equal(t, 50, chair.Available, "sibling line must not be debited")
		table, err := f.stock.FindByProduct(ctx, f.tableID)
		require.NoError(t, err)
		assert.Equal(t, 10, table.Available)
	})

	t.Run("unknown product fails before stock moves", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())

		_, err := f.service.CreateOrder(ctx, checkoutRequest(
			CreateOrderLine{ProductID: uuid.New(), Quantity: 1},
		))
		require.Error(t, err)
		assert.Equal(t, "INVALID_ORDER_INPUT", shared.ErrorCode(err))
	})

	t.Run("invalid coupon fails the checkout without reserving", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())

		req := checkoutRequest(CreateOrderLine{ProductID: f.chairID, Quantity: 1})
		req.CouponCode = "NOPE"
		_, err := f.service.CreateOrder(ctx, req)
		require.Error(t, err)
		assert.Equal(t, "CODE_NOT_FOUND", shared.ErrorCode(err))

		chair, err := f.stock.FindByProduct(ctx, f.chairID)
		require.NoError(t, err)
		assert.Equal(t, 50, chair.Available)
	})

	t.Run("coupon discount lands on the order", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())
		seedCoupon(t, f, "SPRING10", 0)

		req := checkoutRequest(CreateOrderLine{ProductID: f.chairID, Quantity: 2})
		req.CouponCode = "spring10" // normalization is the service's job
		resp, err := f.service.CreateOrder(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, "SPRING10", resp.CouponCode)
		assert.True(t, decimal.NewFromInt(500).Equal(resp.Discount), "discount was %s", resp.Discount)
		// tax on the discounted base: (5000-500)*0.18 = 810
		assert.True(t, decimal.NewFromInt(810).Equal(resp.Tax), "tax was %s", resp.Tax)

		c, err := f.coupons.FindByCode(ctx, "SPRING10")
		require.NoError(t, err)
		assert.Equal(t, 1, c.UsageCount)
	})
}

func seedCoupon(t *testing.T, f *fixture, code string, usageLimit int) {
	t.Helper()
	c, err := promo.NewCoupon(code, promo.DiscountPercentage, decimal.NewFromInt(10),
		time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	c.UsageLimit = usageLimit
	require.NoError(t, f.coupons.Save(context.Background(), c))
}

// A usage-limited code under concurrent checkout: the ceiling holds exactly,
// and every checkout that loses the redemption race is fully compensated.
func TestCreateOrderCouponCeiling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultPolicy())
	seedCoupon(t, f, "LIMIT5", 5)

	const attempts = 25
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := checkoutRequest(CreateOrderLine{ProductID: f.chairID, Quantity: 1})
			req.CouponCode = "LIMIT5"
			_, errs[i] = f.service.CreateOrder(ctx, req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, "USAGE_LIMIT_REACHED", shared.ErrorCode(err))
		}
	}
	assert.Equal(t, 5, succeeded)

	c, err := f.coupons.FindByCode(ctx, "LIMIT5")
	require.NoError(t, err)
	assert.Equal(t, 5, c.UsageCount)

	// conservation: only the five surviving orders hold reservations
	chair, err := f.stock.FindByProduct(ctx, f.chairID)
	require.NoError(t, err)
	assert.Equal(t, 45, chair.Available)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()

	place := func(t *testing.T, f *fixture, qty int) *OrderResponse {
		t.Helper()
		resp, err := f.service.CreateOrder(ctx, checkoutRequest(
			CreateOrderLine{ProductID: f.chairID, Quantity: qty},
		))
		require.NoError(t, err)
		return resp
	}

	t.Run("cancellation releases the reservation exactly once", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())
		resp := place(t, f, 3)

		item, err := f.stock.FindByProduct(ctx, f.chairID)
		require.NoError(t, err)
		require.Equal(t, 47, item.Available)

		_, err = f.service.Transition(ctx, resp.ID, "cancelled", "admin-1", "customer request")
		require.NoError(t, err)

		item, err = f.stock.FindByProduct(ctx, f.chairID)
		require.NoError(t, err)
		assert.Equal(t, 50, item.Available)

		// a second cancel is rejected by the state machine, so no double release
		_, err = f.service.Transition(ctx, resp.ID, "cancelled", "admin-1", "again")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))

		item, err = f.stock.FindByProduct(ctx, f.chairID)
		require.NoError(t, err)
		assert.Equal(t, 50, item.Available)
	})

	t.Run("forward walk records history", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())
		resp := place(t, f, 1)

		for _, target := range []string{"confirmed", "processing", "shipped", "delivered"} {
			var err error
			resp, err = f.service.Transition(ctx, resp.ID, target, "admin-1", "")
			require.NoError(t, err)
			assert.Equal(t, target, resp.Status)
		}

		history, err := f.service.History(ctx, resp.ID)
		require.NoError(t, err)
		require.Len(t, history, 5) // pending + four transitions
		assert.Equal(t, "pending", history[0].Status)
		assert.Equal(t, "delivered", history[4].Status)

		next, err := f.service.NextStatuses(ctx, resp.ID)
		require.NoError(t, err)
		assert.Empty(t, next, "delivered has no admin transitions")
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())
		resp := place(t, f, 1)

		_, err := f.service.Transition(ctx, resp.ID, "shipped", "admin-1", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t, defaultPolicy())
		_, err := f.service.Transition(ctx, uuid.New(), "confirmed", "admin-1", "")
		require.Error(t, err)
		assert.Equal(t, "ORDER_NOT_FOUND", shared.ErrorCode(err))
	})
}

// flakyStockRepo fails a set number of UpdateMany calls before delegating,
// standing in for a transient store fault
type flakyStockRepo struct {
	stock.Repository
	mu       sync.Mutex
	failures int
}

func (r *flakyStockRepo) UpdateMany(ctx context.Context, productIDs []uuid.UUID, mutate func(map[uuid.UUID]*stock.StockItem) error) (map[uuid.UUID]*stock.StockItem, error) {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return nil, errors.New("transient store fault")
	}
	r.mu.Unlock()
	return r.Repository.UpdateMany(ctx, productIDs, mutate)
}

func (r *flakyStockRepo) failNext(n int) {
	r.mu.Lock()
	r.failures = n
	r.mu.Unlock()
}

// The release after a committed cancellation retries once, so a transient
// store fault does not leave the ledger under-credited.
func TestCancelReleaseRetriesTransientFault(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, defaultPolicy())

	flaky := &flakyStockRepo{Repository: f.stock}
	bus := event.NewInMemoryEventBus(zap.NewNop())
	service := NewService(f.orders, flaky, f.coupons, f.catalog, bus, zap.NewNop(), defaultPolicy())

	resp, err := service.CreateOrder(ctx, checkoutRequest(
		CreateOrderLine{ProductID: f.chairID, Quantity: 2},
	))
	require.NoError(t, err)

	flaky.failNext(1)
	_, err = service.Transition(ctx, resp.ID, "cancelled", "admin-1", "payment failed")
	require.NoError(t, err)

	item, err := f.stock.FindByProduct(ctx, f.chairID)
	require.NoError(t, err)
	assert.Equal(t, 50, item.Available, "release retried past the fault")
}
