package persistence

import (
	"context"
	"errors"
	"sort"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/promo"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
)

// CouponRepository implements promo.Repository on the kv boundary. Coupons
// are keyed by their normalized code, and Update holds the per-code lock so
// validate-then-redeem is one serialized step per code.
type CouponRepository struct {
	store kv.Store
	locks *KeyedMutex
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(store kv.Store) *CouponRepository {
	return &CouponRepository{
		store: store,
		locks: NewKeyedMutex(defaultStripes),
	}
}

// FindByCode finds a coupon by its normalized code
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*promo.Coupon, error) {
	return r.load(ctx, promo.NormalizeCode(code))
}

// List returns all coupons ordered by code
func (r *CouponRepository) List(ctx context.Context) ([]promo.Coupon, error) {
	records, err := r.store.List(ctx, kindCoupons)
	if err != nil {
		return nil, err
	}

	coupons := make([]promo.Coupon, 0, len(records))
	for _, rec := range records {
		var c promo.Coupon
		if err := decode(rec.Value, &c); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool {
		return coupons[i].Code < coupons[j].Code
	})
	return coupons, nil
}

// Save creates or updates a coupon with optimistic locking
func (r *CouponRepository) Save(ctx context.Context, c *promo.Coupon) error {
	key := promo.NormalizeCode(c.Code)
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := checkVersion(ctx, r.store, kindCoupons, key, c.Version); err != nil {
		return err
	}
	c.IncrementVersion()

	data, err := encode(c)
	if err != nil {
		c.Version--
		return err
	}
	return r.store.Set(ctx, kindCoupons, key, data)
}

// Update applies mutate to the coupon under its per-code write lock
func (r *CouponRepository) Update(ctx context.Context, code string, mutate func(*promo.Coupon) error) (*promo.Coupon, error) {
	key := promo.NormalizeCode(code)
	unlock := r.locks.Lock(key)
	defer unlock()

	c, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := mutate(c); err != nil {
		return nil, err
	}
	c.IncrementVersion()

	data, err := encode(c)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, kindCoupons, key, data); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a coupon by its normalized code
func (r *CouponRepository) Delete(ctx context.Context, code string) error {
	key := promo.NormalizeCode(code)
	unlock := r.locks.Lock(key)
	defer unlock()

	return r.store.Delete(ctx, kindCoupons, key)
}

func (r *CouponRepository) load(ctx context.Context, key string) (*promo.Coupon, error) {
	data, err := r.store.Get(ctx, kindCoupons, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, promo.ErrCodeNotFound
		}
		return nil, err
	}

	var c promo.Coupon
	if err := decode(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ promo.Repository = (*CouponRepository)(nil)
