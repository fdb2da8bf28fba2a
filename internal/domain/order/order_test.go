package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

func testItems() []Item {
	return []Item{
		{
			ProductID: uuid.New(),
			Name:      "Teak Coffee Table",
			Category:  "tables",
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(5000),
			UnitCost:  decimal.NewFromInt(3200),
		},
	}
}

func testCustomer() Customer {
	return Customer{Name: "Asha Nair", Email: "asha@example.com", Phone: "+91 98200 11223"}
}

func testPricing() Pricing {
	return Pricing{
		TaxRate:      decimal.NewFromFloat(0.18),
		ShippingCost: decimal.NewFromInt(200),
	}
}

func mustOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("FC-20260801-0001", testCustomer(), Address{Line1: "14 MG Road", City: "Kochi", State: "KL", PostalCode: "682001"}, testItems(), "card", testPricing())
	require.NoError(t, err)
	return o
}

func deliver(t *testing.T, o *Order) {
	t.Helper()
	for _, s := range []Status{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
		require.NoError(t, o.TransitionTo(s, "admin", ""))
	}
}

func TestNewOrder(t *testing.T) {
	t.Run("valid order starts pending with history", func(t *testing.T) {
		o := mustOrder(t)

		assert.Equal(t, StatusPending, o.Status)
		require.Len(t, o.StatusHistory, 1)
		assert.Equal(t, StatusPending, o.StatusHistory[0].Status)
		assert.Equal(t, "system", o.StatusHistory[0].ActorID)

		// 2 x 5000 = 10000; tax 18% = 1800; shipping 200
		assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(10000)), "subtotal = %s", o.Subtotal)
		assert.True(t, o.Tax.Equal(decimal.NewFromInt(1800)), "tax = %s", o.Tax)
		assert.True(t, o.Total.Equal(decimal.NewFromInt(12000)), "total = %s", o.Total)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderPlaced, events[0].EventType())
	})

	t.Run("discount reduces taxable amount", func(t *testing.T) {
		pricing := testPricing()
		pricing.Discount = decimal.NewFromInt(1000)
		pricing.CouponCode = "WELCOME10"

		o, err := NewOrder("FC-20260801-0002", testCustomer(), Address{}, testItems(), "card", pricing)
		require.NoError(t, err)

		// taxable 9000, tax 1620, total 9000 + 1620 + 200
		assert.True(t, o.Tax.Equal(decimal.NewFromInt(1620)))
		assert.True(t, o.Total.Equal(decimal.NewFromInt(10820)))
		assert.Equal(t, "WELCOME10", o.CouponCode)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*string, *Customer, *[]Item, *string)
		}{
			{"empty order number", func(num *string, _ *Customer, _ *[]Item, _ *string) { *num = "" }},
			{"empty customer name", func(_ *string, c *Customer, _ *[]Item, _ *string) { c.Name = "  " }},
			{"no items", func(_ *string, _ *Customer, items *[]Item, _ *string) { *items = nil }},
			{"empty payment method", func(_ *string, _ *Customer, _ *[]Item, pm *string) { *pm = "" }},
			{"zero quantity", func(_ *string, _ *Customer, items *[]Item, _ *string) { (*items)[0].Quantity = 0 }},
			{"negative price", func(_ *string, _ *Customer, items *[]Item, _ *string) {
				(*items)[0].UnitPrice = decimal.NewFromInt(-1)
			}},
			{"nil product id", func(_ *string, _ *Customer, items *[]Item, _ *string) {
				(*items)[0].ProductID = uuid.Nil
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				num := "FC-20260801-0003"
				customer := testCustomer()
				items := testItems()
				pm := "card"
				tt.mutate(&num, &customer, &items, &pm)

				_, err := NewOrder(num, customer, Address{}, items, pm, testPricing())
				require.Error(t, err)
				assert.Equal(t, "INVALID_ORDER_INPUT", shared.ErrorCode(err))
			})
		}
	})

	t.Run("duplicate product rejected", func(t *testing.T) {
		items := testItems()
		items = append(items, items[0])

		_, err := NewOrder("FC-20260801-0004", testCustomer(), Address{}, items, "card", testPricing())
		require.Error(t, err)
		assert.Equal(t, "INVALID_ORDER_INPUT", shared.ErrorCode(err))
	})
}

func TestOrderTransitions(t *testing.T) {
	t.Run("happy path to delivered", func(t *testing.T) {
		o := mustOrder(t)
		deliver(t, o)

		assert.Equal(t, StatusDelivered, o.Status)
		require.Len(t, o.StatusHistory, 5)
		assert.Equal(t, StatusDelivered, o.StatusHistory[4].Status)
	})

	t.Run("cancel from processing", func(t *testing.T) {
		o := mustOrder(t)
		require.NoError(t, o.TransitionTo(StatusConfirmed, "admin", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "admin", ""))
		require.NoError(t, o.TransitionTo(StatusCancelled, "admin", "customer asked"))

		assert.True(t, o.IsCancelled())
		assert.True(t, o.IsTerminal())

		var cancelled *OrderCancelledEvent
		for _, ev := range o.GetDomainEvents() {
			if c, ok := ev.(*OrderCancelledEvent); ok {
				cancelled = c
			}
		}
		require.NotNil(t, cancelled)
		assert.Equal(t, "customer asked", cancelled.Reason)
		require.Len(t, cancelled.Items, 1)
		assert.Equal(t, 2, cancelled.Items[0].Quantity)
	})

	t.Run("double cancel fails", func(t *testing.T) {
		o := mustOrder(t)
		require.NoError(t, o.TransitionTo(StatusCancelled, "admin", ""))

		err := o.TransitionTo(StatusCancelled, "admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
		assert.Len(t, o.StatusHistory, 2)
	})

	t.Run("cancel not offered after shipped", func(t *testing.T) {
		o := mustOrder(t)
		require.NoError(t, o.TransitionTo(StatusConfirmed, "admin", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "admin", ""))
		require.NoError(t, o.TransitionTo(StatusShipped, "admin", ""))

		err := o.TransitionTo(StatusCancelled, "admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("refunded unreachable directly from delivered", func(t *testing.T) {
		o := mustOrder(t)
		deliver(t, o)

		err := o.TransitionTo(StatusRefunded, "admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
		assert.Equal(t, StatusDelivered, o.Status)
	})

	t.Run("returned unreachable through admin path", func(t *testing.T) {
		o := mustOrder(t)
		deliver(t, o)

		err := o.TransitionTo(StatusReturned, "admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("skipping states fails", func(t *testing.T) {
		o := mustOrder(t)

		err := o.TransitionTo(StatusShipped, "admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("unknown status fails", func(t *testing.T) {
		o := mustOrder(t)

		err := o.TransitionTo(Status("teleported"), "admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("history never repeats a status consecutively", func(t *testing.T) {
		o := mustOrder(t)
		deliver(t, o)
		_ = o.MarkReturned("workflow", "")
		_ = o.MarkRefunded("workflow", "")

		for i := 1; i < len(o.StatusHistory); i++ {
			assert.NotEqual(t, o.StatusHistory[i-1].Status, o.StatusHistory[i].Status)
		}
		assert.Equal(t, o.Status, o.StatusHistory[len(o.StatusHistory)-1].Status)
	})
}

func TestOrderReturnWorkflowEdges(t *testing.T) {
	t.Run("mark returned then refunded from delivered", func(t *testing.T) {
		o := mustOrder(t)
		deliver(t, o)

		require.NoError(t, o.MarkReturned("workflow", "return RET-1 refunded"))
		assert.Equal(t, StatusReturned, o.Status)

		require.NoError(t, o.MarkRefunded("workflow", ""))
		assert.Equal(t, StatusRefunded, o.Status)
		assert.True(t, o.IsTerminal())
	})

	t.Run("mark returned before delivery fails", func(t *testing.T) {
		o := mustOrder(t)

		err := o.MarkReturned("workflow", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("mark refunded before returned fails", func(t *testing.T) {
		o := mustOrder(t)
		deliver(t, o)

		err := o.MarkRefunded("workflow", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_TRANSITION", shared.ErrorCode(err))
	})
}

func TestNextPossibleStatuses(t *testing.T) {
	tests := []struct {
		current Status
		want    []Status
	}{
		{StatusPending, []Status{StatusConfirmed, StatusCancelled}},
		{StatusConfirmed, []Status{StatusProcessing, StatusCancelled}},
		{StatusProcessing, []Status{StatusShipped, StatusCancelled}},
		{StatusShipped, []Status{StatusDelivered}},
		{StatusDelivered, []Status{}},
		{StatusCancelled, []Status{}},
		{StatusReturned, []Status{}},
		{StatusRefunded, []Status{}},
	}

	for _, tt := range tests {
		t.Run(tt.current.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NextPossibleStatuses(tt.current))
		})
	}
}

func TestItemQuantity(t *testing.T) {
	o := mustOrder(t)

	assert.Equal(t, 2, o.ItemQuantity(o.Items[0].ProductID))
	assert.Equal(t, 0, o.ItemQuantity(uuid.New()))
	assert.Nil(t, o.GetItem(uuid.New()))
}
