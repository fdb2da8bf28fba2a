package returns

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder("FC-20260810-0001",
		order.Customer{Name: "Ravi Menon", Email: "ravi@example.com"},
		order.Address{Line1: "3 Marine Drive", City: "Kochi", State: "KL", PostalCode: "682031"},
		[]order.Item{{
			ProductID: uuid.New(),
			Name:      "Oak Bookshelf",
			Category:  "storage",
			Quantity:  2,
			UnitPrice: decimal.NewFromInt(5000),
			UnitCost:  decimal.NewFromInt(3000),
		}},
		"upi",
		order.Pricing{TaxRate: decimal.NewFromFloat(0.18)},
	)
	require.NoError(t, err)
	for _, s := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		require.NoError(t, o.TransitionTo(s, "admin", ""))
	}
	return o
}

func mustReturn(t *testing.T, o *order.Order, qty int) *ReturnRequest {
	t.Helper()
	r, err := NewReturnRequest("RET-20260815-0001", o, ReasonDefective, "leg arrived cracked",
		[]Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: qty}}, nil)
	require.NoError(t, err)
	return r
}

func TestNewReturnRequest(t *testing.T) {
	t.Run("partial return captures original price", func(t *testing.T) {
		o := deliveredOrder(t)
		r := mustReturn(t, o, 1)

		assert.Equal(t, StatusPendingApproval, r.Status)
		assert.Equal(t, o.ID, r.OrderID)
		require.Len(t, r.Items, 1)
		assert.Equal(t, "Oak Bookshelf", r.Items[0].ProductName)
		assert.Equal(t, 2, r.Items[0].Quantity)
		assert.Equal(t, 1, r.Items[0].ReturnQuantity)
		assert.True(t, r.RefundAmount.Equal(decimal.NewFromInt(5000)), "refund = %s", r.RefundAmount)
		assert.False(t, r.RequestedAt.IsZero())
	})

	t.Run("order must be delivered", func(t *testing.T) {
		o, err := order.NewOrder("FC-20260810-0002",
			order.Customer{Name: "Ravi Menon"}, order.Address{},
			[]order.Item{{ProductID: uuid.New(), Name: "Stool", Quantity: 1, UnitPrice: decimal.NewFromInt(900)}},
			"card", order.Pricing{})
		require.NoError(t, err)

		_, err = NewReturnRequest("RET-20260815-0002", o, ReasonOther, "",
			[]Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: 1}}, nil)
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_INPUT", shared.ErrorCode(err))
	})

	t.Run("cannot exceed ordered quantity", func(t *testing.T) {
		o := deliveredOrder(t)

		_, err := NewReturnRequest("RET-20260815-0003", o, ReasonDefective, "",
			[]Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: 3}}, nil)
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_INPUT", shared.ErrorCode(err))
	})

	t.Run("cumulative quantity across active returns enforced", func(t *testing.T) {
		o := deliveredOrder(t)
		already := map[uuid.UUID]int{o.Items[0].ProductID: 1}

		_, err := NewReturnRequest("RET-20260815-0004", o, ReasonDefective, "",
			[]Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: 2}}, already)
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_INPUT", shared.ErrorCode(err))

		r, err := NewReturnRequest("RET-20260815-0005", o, ReasonDefective, "",
			[]Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: 1}}, already)
		require.NoError(t, err)
		assert.Equal(t, 1, r.Items[0].ReturnQuantity)
	})

	t.Run("product not on order rejected", func(t *testing.T) {
		o := deliveredOrder(t)

		_, err := NewReturnRequest("RET-20260815-0006", o, ReasonWrongItem, "",
			[]Item{{ProductID: uuid.New(), ReturnQuantity: 1}}, nil)
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_INPUT", shared.ErrorCode(err))
	})

	t.Run("invalid reason rejected", func(t *testing.T) {
		o := deliveredOrder(t)

		_, err := NewReturnRequest("RET-20260815-0007", o, Reason("changed_mind"), "",
			[]Item{{ProductID: o.Items[0].ProductID, ReturnQuantity: 1}}, nil)
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_INPUT", shared.ErrorCode(err))
	})
}

func TestReturnWorkflow(t *testing.T) {
	t.Run("full happy path", func(t *testing.T) {
		o := deliveredOrder(t)
		r := mustReturn(t, o, 1)

		require.NoError(t, r.Approve("meera.admin", "ok to return"))
		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, "meera.admin", r.ApprovedBy)
		assert.NotNil(t, r.ApprovedAt)

		pickup := time.Now().AddDate(0, 0, 3)
		require.NoError(t, r.SchedulePickup(pickup, "meera.admin"))
		assert.Equal(t, StatusPickupScheduled, r.Status)
		assert.Equal(t, "meera.admin", r.PickupScheduledBy)
		require.NotNil(t, r.ScheduledDate)
		assert.True(t, r.ScheduledDate.Equal(pickup))

		require.NoError(t, r.MarkPickedUp("warehouse-1"))
		assert.Equal(t, "warehouse-1", r.PickedUpBy)
		require.NoError(t, r.MarkReceived("warehouse-1"))
		assert.Equal(t, "warehouse-1", r.ReceivedBy)

		require.NoError(t, r.ProcessRefund("meera.admin", "original_payment"))
		assert.Equal(t, StatusRefunded, r.Status)
		assert.Equal(t, "original_payment", r.RefundMethod)
		assert.Equal(t, "meera.admin", r.RefundedBy)
		assert.NotNil(t, r.RefundedAt)
	})

	t.Run("stage preconditions enforced", func(t *testing.T) {
		o := deliveredOrder(t)

		tests := []struct {
			name string
			act  func(r *ReturnRequest) error
		}{
			{"schedule before approval", func(r *ReturnRequest) error { return r.SchedulePickup(time.Now(), "admin") }},
			{"pickup before schedule", func(r *ReturnRequest) error { return r.MarkPickedUp("admin") }},
			{"receive before pickup", func(r *ReturnRequest) error { return r.MarkReceived("admin") }},
			{"refund before receipt", func(r *ReturnRequest) error { return r.ProcessRefund("admin", "original_payment") }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := mustReturn(t, o, 1)
				err := tt.act(r)
				require.Error(t, err)
				assert.Equal(t, "INVALID_RETURN_TRANSITION", shared.ErrorCode(err))
			})
		}
	})

	t.Run("reject only from pending approval", func(t *testing.T) {
		o := deliveredOrder(t)
		r := mustReturn(t, o, 1)

		require.NoError(t, r.Approve("admin", ""))
		err := r.Reject("admin", "too late")
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("rejection requires a reason and is terminal", func(t *testing.T) {
		o := deliveredOrder(t)
		r := mustReturn(t, o, 1)

		require.Error(t, r.Reject("admin", "  "))

		require.NoError(t, r.Reject("admin", "outside return window"))
		assert.Equal(t, StatusRejected, r.Status)
		assert.False(t, r.Status.IsActive())
		assert.Equal(t, "admin", r.RejectedBy)
		assert.NotNil(t, r.RejectedAt)

		err := r.Approve("admin", "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_RETURN_TRANSITION", shared.ErrorCode(err))
	})

	t.Run("refund is idempotent at the aggregate", func(t *testing.T) {
		o := deliveredOrder(t)
		r := mustReturn(t, o, 1)
		require.NoError(t, r.Approve("admin", ""))
		require.NoError(t, r.SchedulePickup(time.Now(), "admin"))
		require.NoError(t, r.MarkPickedUp("admin"))
		require.NoError(t, r.MarkReceived("admin"))
		require.NoError(t, r.ProcessRefund("admin", "original_payment"))

		firstRefundedAt := *r.RefundedAt
		err := r.ProcessRefund("admin", "original_payment")
		require.Error(t, err)
		assert.Equal(t, "ALREADY_REFUNDED", shared.ErrorCode(err))
		assert.Equal(t, firstRefundedAt, *r.RefundedAt)
	})
}

func TestReturnedQuantities(t *testing.T) {
	o := deliveredOrder(t)
	r := mustReturn(t, o, 2)

	got := r.ReturnedQuantities()
	assert.Equal(t, map[uuid.UUID]int{o.Items[0].ProductID: 2}, got)
}
