package promo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/promo"
)

// CreateCouponRequest is the admin payload for registering a coupon
type CreateCouponRequest struct {
	Code                 string      `json:"code" binding:"required"`
	Description          string      `json:"description"`
	Type                 string      `json:"type" binding:"required,oneof=percentage fixed"`
	Value                float64     `json:"value" binding:"required,gt=0"`
	MinOrderAmount       float64     `json:"min_order_amount" binding:"gte=0"`
	MaxDiscount          float64     `json:"max_discount" binding:"gte=0"`
	UsageLimit           int         `json:"usage_limit" binding:"gte=0"`
	ValidFrom            time.Time   `json:"valid_from" binding:"required"`
	ValidUntil           time.Time   `json:"valid_until" binding:"required"`
	ApplicableCategories []string    `json:"applicable_categories"`
	ApplicableProducts   []uuid.UUID `json:"applicable_products"`
}

// ValidateRequest checks a code against a prospective order
type ValidateRequest struct {
	Code       string      `json:"code" binding:"required"`
	Subtotal   float64     `json:"subtotal" binding:"required,gt=0"`
	Categories []string    `json:"categories"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// ValidateResponse carries the discount a valid code would yield
type ValidateResponse struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// CouponResponse is the coupon representation returned by the API
type CouponResponse struct {
	Code                 string          `json:"code"`
	Description          string          `json:"description,omitempty"`
	Type                 string          `json:"type"`
	Value                decimal.Decimal `json:"value"`
	MinOrderAmount       decimal.Decimal `json:"min_order_amount"`
	MaxDiscount          decimal.Decimal `json:"max_discount"`
	UsageLimit           int             `json:"usage_limit"`
	UsageCount           int             `json:"usage_count"`
	RemainingUses        int             `json:"remaining_uses"`
	ValidFrom            time.Time       `json:"valid_from"`
	ValidUntil           time.Time       `json:"valid_until"`
	Active               bool            `json:"active"`
	ApplicableCategories []string        `json:"applicable_categories,omitempty"`
	ApplicableProducts   []uuid.UUID     `json:"applicable_products,omitempty"`
}

// Service exposes the promo code registry: admin CRUD plus the
// validate/redeem pair the checkout pipeline consumes.
type Service struct {
	coupons promo.Repository
	logger  *zap.Logger
}

// NewService creates a new promo service
func NewService(coupons promo.Repository, logger *zap.Logger) *Service {
	return &Service{
		coupons: coupons,
		logger:  logger.Named("promo-service"),
	}
}

// Create registers a new coupon
func (s *Service) Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error) {
	c, err := promo.NewCoupon(req.Code, promo.DiscountType(req.Type),
		decimal.NewFromFloat(req.Value), req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	c.Description = req.Description
	c.MinOrderAmount = decimal.NewFromFloat(req.MinOrderAmount)
	c.MaxDiscount = decimal.NewFromFloat(req.MaxDiscount)
	c.UsageLimit = req.UsageLimit
	c.ApplicableCategories = req.ApplicableCategories
	c.ApplicableProducts = req.ApplicableProducts

	if err := s.coupons.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created",
		zap.String("code", c.Code),
		zap.String("type", string(c.Type)),
		zap.Int("usage_limit", c.UsageLimit),
	)

	response := toCouponResponse(c)
	return &response, nil
}

// Get returns a coupon by code
func (s *Service) Get(ctx context.Context, code string) (*CouponResponse, error) {
	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := toCouponResponse(c)
	return &response, nil
}

// List returns all coupons
func (s *Service) List(ctx context.Context) ([]CouponResponse, error) {
	all, err := s.coupons.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]CouponResponse, len(all))
	for i := range all {
		responses[i] = toCouponResponse(&all[i])
	}
	return responses, nil
}

// Validate checks a code against a prospective order without consuming a
// use; the checkout pipeline redeems separately under the per-code lock.
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	c, err := s.coupons.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	discount, err := c.Validate(decimal.NewFromFloat(req.Subtotal), req.Categories, req.ProductIDs, time.Now())
	if err != nil {
		return nil, err
	}
	return &ValidateResponse{Code: c.Code, Discount: discount}, nil
}

// Activate makes a coupon redeemable again
func (s *Service) Activate(ctx context.Context, code string) (*CouponResponse, error) {
	return s.update(ctx, code, func(c *promo.Coupon) error {
		c.Activate()
		return nil
	})
}

// Deactivate pulls a coupon without deleting its usage history
func (s *Service) Deactivate(ctx context.Context, code string) (*CouponResponse, error) {
	return s.update(ctx, code, func(c *promo.Coupon) error {
		c.Deactivate()
		return nil
	})
}

// Delete removes a coupon
func (s *Service) Delete(ctx context.Context, code string) error {
	if _, err := s.coupons.FindByCode(ctx, code); err != nil {
		return err
	}
	return s.coupons.Delete(ctx, code)
}

func (s *Service) update(ctx context.Context, code string, mutate func(*promo.Coupon) error) (*CouponResponse, error) {
	c, err := s.coupons.Update(ctx, code, mutate)
	if err != nil {
		return nil, err
	}
	response := toCouponResponse(c)
	return &response, nil
}

func toCouponResponse(c *promo.Coupon) CouponResponse {
	return CouponResponse{
		Code:                 c.Code,
		Description:          c.Description,
		Type:                 string(c.Type),
		Value:                c.Value,
		MinOrderAmount:       c.MinOrderAmount,
		MaxDiscount:          c.MaxDiscount,
		UsageLimit:           c.UsageLimit,
		UsageCount:           c.UsageCount,
		RemainingUses:        c.RemainingUses(),
		ValidFrom:            c.ValidFrom,
		ValidUntil:           c.ValidUntil,
		Active:               c.Active,
		ApplicableCategories: c.ApplicableCategories,
		ApplicableProducts:   c.ApplicableProducts,
	}
}
