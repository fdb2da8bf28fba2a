package promo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

// Domain errors for coupon validation and redemption
var (
	ErrCodeNotFound      = shared.NewDomainError("CODE_NOT_FOUND", "Coupon code not found")
	ErrCodeExpired       = shared.NewDomainError("CODE_EXPIRED", "Coupon code has expired")
	ErrCodeInactive      = shared.NewDomainError("CODE_INACTIVE", "Coupon code is not active")
	ErrUsageLimitReached = shared.NewDomainError("USAGE_LIMIT_REACHED", "Coupon usage limit reached")
)

// DiscountType determines how a coupon's value is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid checks if the discount type is a valid DiscountType
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// NormalizeCode canonicalizes a coupon code for lookup and storage
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Coupon is the aggregate root for a promo code. Validate is read-only and
// safe to call any number of times; Redeem is the single mutation that
// consumes a use, and the service layer serializes it per code so the usage
// count can never pass the limit.
type Coupon struct {
	shared.BaseAggregateRoot
	Code                 string          `json:"code"`
	Description          string          `json:"description,omitempty"`
	Type                 DiscountType    `json:"type"`
	Value                decimal.Decimal `json:"value"`
	MinOrderAmount       decimal.Decimal `json:"min_order_amount"`
	MaxDiscount          decimal.Decimal `json:"max_discount"`
	UsageLimit           int             `json:"usage_limit"`
	UsageCount           int             `json:"usage_count"`
	ValidFrom            time.Time       `json:"valid_from"`
	ValidUntil           time.Time       `json:"valid_until"`
	Active               bool            `json:"active"`
	ApplicableCategories []string        `json:"applicable_categories,omitempty"`
	ApplicableProducts   []uuid.UUID     `json:"applicable_products,omitempty"`
}

// NewCoupon creates a coupon. A zero MaxDiscount means no cap; a zero
// UsageLimit means unlimited redemptions.
func NewCoupon(code string, discountType DiscountType, value decimal.Decimal, validFrom, validUntil time.Time) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_COUPON_INPUT", "Coupon code cannot be empty")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COUPON_INPUT",
			fmt.Sprintf("Unknown discount type %q", discountType))
	}
	if !value.IsPositive() {
		return nil, shared.NewDomainError("INVALID_COUPON_INPUT", "Discount value must be positive")
	}
	if discountType == DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_COUPON_INPUT", "Percentage discount cannot exceed 100")
	}
	if !validUntil.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_COUPON_INPUT", "Coupon validity window is empty")
	}

	return &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Type:              discountType,
		Value:             value,
		ValidFrom:         validFrom,
		ValidUntil:        validUntil,
		Active:            true,
	}, nil
}

// Validate checks applicability against an order's subtotal and contents at
// the given instant, and returns the discount that would apply. It never
// mutates the coupon. Checks run in a fixed order so the caller always sees
// the most fundamental failure first.
func (c *Coupon) Validate(subtotal decimal.Decimal, categories []string, products []uuid.UUID, now time.Time) (decimal.Decimal, error) {
	if !c.Active {
		return decimal.Zero, ErrCodeInactive
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return decimal.Zero, ErrCodeExpired
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return decimal.Zero, ErrUsageLimitReached
	}
	if c.MinOrderAmount.IsPositive() && subtotal.LessThan(c.MinOrderAmount) {
		return decimal.Zero, shared.NewDomainError("MIN_ORDER_NOT_MET",
			fmt.Sprintf("Order subtotal must be at least %s to use %s", c.MinOrderAmount.StringFixed(2), c.Code))
	}
	if !c.appliesTo(categories, products) {
		return decimal.Zero, shared.NewDomainError("NOT_APPLICABLE",
			fmt.Sprintf("Coupon %s does not apply to any item in this order", c.Code))
	}

	return c.discountFor(subtotal), nil
}

// Redeem consumes one use. The caller must hold the per-code write lock and
// re-validate immediately before calling.
func (c *Coupon) Redeem() error {
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return ErrUsageLimitReached
	}
	c.UsageCount++
	c.UpdatedAt = time.Now()
	return nil
}

// Activate makes the coupon redeemable again
func (c *Coupon) Activate() {
	c.Active = true
	c.UpdatedAt = time.Now()
}

// Deactivate pulls the coupon without deleting its usage history
func (c *Coupon) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// RemainingUses returns how many redemptions are left, or -1 for unlimited
func (c *Coupon) RemainingUses() int {
	if c.UsageLimit <= 0 {
		return -1
	}
	left := c.UsageLimit - c.UsageCount
	if left < 0 {
		return 0
	}
	return left
}

func (c *Coupon) discountFor(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.Type {
	case DiscountPercentage:
		discount = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Round(2)
		if c.MaxDiscount.IsPositive() && discount.GreaterThan(c.MaxDiscount) {
			discount = c.MaxDiscount
		}
	case DiscountFixed:
		discount = c.Value
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount
}

// appliesTo returns true when the coupon has no scoping, or when at least
// one of the order's categories or products is in scope
func (c *Coupon) appliesTo(categories []string, products []uuid.UUID) bool {
	if len(c.ApplicableCategories) == 0 && len(c.ApplicableProducts) == 0 {
		return true
	}
	for _, cat := range categories {
		for _, allowed := range c.ApplicableCategories {
			if strings.EqualFold(cat, allowed) {
				return true
			}
		}
	}
	for _, pid := range products {
		for _, allowed := range c.ApplicableProducts {
			if pid == allowed {
				return true
			}
		}
	}
	return false
}
