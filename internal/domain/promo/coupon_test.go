package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

var (
	validFrom  = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	validUntil = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	midWindow  = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
)

func percentCoupon(t *testing.T) *Coupon {
	t.Helper()
	c, err := NewCoupon("monsoon20", DiscountPercentage, decimal.NewFromInt(20), validFrom, validUntil)
	require.NoError(t, err)
	return c
}

func TestNewCoupon(t *testing.T) {
	t.Run("code is normalized", func(t *testing.T) {
		c := percentCoupon(t)
		assert.Equal(t, "MONSOON20", c.Code)
		assert.True(t, c.Active)
	})

	t.Run("validation failures", func(t *testing.T) {
		_, err := NewCoupon("", DiscountFixed, decimal.NewFromInt(100), validFrom, validUntil)
		require.Error(t, err)

		_, err = NewCoupon("X", DiscountType("bogus"), decimal.NewFromInt(10), validFrom, validUntil)
		require.Error(t, err)

		_, err = NewCoupon("X", DiscountFixed, decimal.Zero, validFrom, validUntil)
		require.Error(t, err)

		_, err = NewCoupon("X", DiscountPercentage, decimal.NewFromInt(101), validFrom, validUntil)
		require.Error(t, err)

		_, err = NewCoupon("X", DiscountFixed, decimal.NewFromInt(10), validUntil, validFrom)
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Run("percentage discount with cap", func(t *testing.T) {
		c := percentCoupon(t)
		c.MaxDiscount = decimal.NewFromInt(1500)

		discount, err := c.Validate(decimal.NewFromInt(10000), nil, nil, midWindow)
		require.NoError(t, err)
		assert.True(t, discount.Equal(decimal.NewFromInt(1500)), "capped at max discount, got %s", discount)

		discount, err = c.Validate(decimal.NewFromInt(5000), nil, nil, midWindow)
		require.NoError(t, err)
		assert.True(t, discount.Equal(decimal.NewFromInt(1000)), "20%% of 5000, got %s", discount)
	})

	t.Run("fixed discount clamped to subtotal", func(t *testing.T) {
		c, err := NewCoupon("FLAT500", DiscountFixed, decimal.NewFromInt(500), validFrom, validUntil)
		require.NoError(t, err)

		discount, err := c.Validate(decimal.NewFromInt(300), nil, nil, midWindow)
		require.NoError(t, err)
		assert.True(t, discount.Equal(decimal.NewFromInt(300)))
	})

	t.Run("inactive", func(t *testing.T) {
		c := percentCoupon(t)
		c.Deactivate()

		_, err := c.Validate(decimal.NewFromInt(1000), nil, nil, midWindow)
		require.Error(t, err)
		assert.Equal(t, "CODE_INACTIVE", shared.ErrorCode(err))

		c.Activate()
		_, err = c.Validate(decimal.NewFromInt(1000), nil, nil, midWindow)
		require.NoError(t, err)
	})

	t.Run("outside validity window", func(t *testing.T) {
		c := percentCoupon(t)

		_, err := c.Validate(decimal.NewFromInt(1000), nil, nil, validFrom.Add(-time.Hour))
		require.Error(t, err)
		assert.Equal(t, "CODE_EXPIRED", shared.ErrorCode(err))

		_, err = c.Validate(decimal.NewFromInt(1000), nil, nil, validUntil.Add(time.Hour))
		require.Error(t, err)
		assert.Equal(t, "CODE_EXPIRED", shared.ErrorCode(err))
	})

	t.Run("minimum order amount", func(t *testing.T) {
		c := percentCoupon(t)
		c.MinOrderAmount = decimal.NewFromInt(2000)

		_, err := c.Validate(decimal.NewFromInt(1999), nil, nil, midWindow)
		require.Error(t, err)
		assert.Equal(t, "MIN_ORDER_NOT_MET", shared.ErrorCode(err))

		_, err = c.Validate(decimal.NewFromInt(2000), nil, nil, midWindow)
		require.NoError(t, err)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		c := percentCoupon(t)
		c.UsageLimit = 1
		c.UsageCount = 1

		_, err := c.Validate(decimal.NewFromInt(1000), nil, nil, midWindow)
		require.Error(t, err)
		assert.Equal(t, "USAGE_LIMIT_REACHED", shared.ErrorCode(err))
	})

	t.Run("category and product scoping", func(t *testing.T) {
		inScope := uuid.New()
		c := percentCoupon(t)
		c.ApplicableCategories = []string{"sofas"}
		c.ApplicableProducts = []uuid.UUID{inScope}

		_, err := c.Validate(decimal.NewFromInt(1000), []string{"tables"}, []uuid.UUID{uuid.New()}, midWindow)
		require.Error(t, err)
		assert.Equal(t, "NOT_APPLICABLE", shared.ErrorCode(err))

		_, err = c.Validate(decimal.NewFromInt(1000), []string{"Sofas"}, nil, midWindow)
		require.NoError(t, err, "category match is case-insensitive")

		_, err = c.Validate(decimal.NewFromInt(1000), nil, []uuid.UUID{inScope}, midWindow)
		require.NoError(t, err, "product match suffices")
	})

	t.Run("validate never mutates", func(t *testing.T) {
		c := percentCoupon(t)
		c.UsageLimit = 5

		for i := 0; i < 10; i++ {
			_, err := c.Validate(decimal.NewFromInt(1000), nil, nil, midWindow)
			require.NoError(t, err)
		}
		assert.Equal(t, 0, c.UsageCount)
	})
}

func TestRedeem(t *testing.T) {
	t.Run("usage ceiling holds", func(t *testing.T) {
		c := percentCoupon(t)
		c.UsageLimit = 5

		for i := 0; i < 5; i++ {
			require.NoError(t, c.Redeem())
		}
		assert.Equal(t, 5, c.UsageCount)

		err := c.Redeem()
		require.Error(t, err)
		assert.Equal(t, "USAGE_LIMIT_REACHED", shared.ErrorCode(err))
		assert.Equal(t, 5, c.UsageCount)
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		c := percentCoupon(t)

		for i := 0; i < 100; i++ {
			require.NoError(t, c.Redeem())
		}
		assert.Equal(t, -1, c.RemainingUses())
	})

	t.Run("remaining uses", func(t *testing.T) {
		c := percentCoupon(t)
		c.UsageLimit = 3
		require.NoError(t, c.Redeem())
		assert.Equal(t, 2, c.RemainingUses())
	})
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "MONSOON20", NormalizeCode("  monsoon20 "))
	assert.Equal(t, "", NormalizeCode("   "))
}
