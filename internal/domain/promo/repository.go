package promo

import (
	"context"
)

// Repository defines the persistence boundary for coupons. Codes are the
// natural key; implementations store and look up by the normalized form.
type Repository interface {
	// FindByCode finds a coupon by its normalized code
	FindByCode(ctx context.Context, code string) (*Coupon, error)

	// List returns all coupons
	List(ctx context.Context) ([]Coupon, error)

	// Save creates or updates a coupon with optimistic locking
	Save(ctx context.Context, c *Coupon) error

	// Update applies mutate to the coupon under its per-code write lock, so
	// concurrent redemptions of the same code serialize. Nothing is written
	// when mutate returns an error.
	Update(ctx context.Context, code string, mutate func(*Coupon) error) (*Coupon, error)

	// Delete removes a coupon by its normalized code
	Delete(ctx context.Context, code string) error
}
