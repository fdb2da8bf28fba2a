package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
)

// OrderRepository implements order.Repository on the kv boundary
type OrderRepository struct {
	store kv.Store
	locks *KeyedMutex
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(store kv.Store) *OrderRepository {
	return &OrderRepository{
		store: store,
		locks: NewKeyedMutex(defaultStripes),
	}
}

// FindByID finds an order by ID
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	data, err := r.store.Get(ctx, kindOrders, id.String())
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}

	var o order.Order
	if err := decode(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by its human-readable number
func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].OrderNumber == orderNumber {
			return &all[i], nil
		}
	}
	return nil, order.ErrOrderNotFound
}

// List returns all orders, newest first
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	records, err := r.store.List(ctx, kindOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(records))
	for _, rec := range records {
		var o order.Order
		if err := decode(rec.Value, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// Save creates or updates an order with optimistic locking
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	key := o.ID.String()
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := checkVersion(ctx, r.store, kindOrders, key, o.Version); err != nil {
		return err
	}
	o.IncrementVersion()

	data, err := encode(o)
	if err != nil {
		o.Version--
		return err
	}
	return r.store.Set(ctx, kindOrders, key, data)
}

// Update applies mutate to the order under its write lock
func (r *OrderRepository) Update(ctx context.Context, id uuid.UUID, mutate func(*order.Order) error) (*order.Order, error) {
	key := id.String()
	unlock := r.locks.Lock(key)
	defer unlock()

	data, err := r.store.Get(ctx, kindOrders, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}

	var o order.Order
	if err := decode(data, &o); err != nil {
		return nil, err
	}
	if err := mutate(&o); err != nil {
		return nil, err
	}
	o.IncrementVersion()

	out, err := encode(&o)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, kindOrders, key, out); err != nil {
		return nil, err
	}
	return &o, nil
}

// NextOrderNumber allocates the next FC-<yyyymmdd>-<seq> number. The daily
// counter lives in the same store, so numbers stay unique across restarts.
func (r *OrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	day := time.Now().Format("20060102")
	counterKey := "order:" + day

	unlock := r.locks.Lock("counter:" + counterKey)
	defer unlock()

	seq, err := nextCounter(ctx, r.store, counterKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FC-%s-%04d", day, seq), nil
}

func nextCounter(ctx context.Context, store kv.Store, key string) (int, error) {
	current := 0
	data, err := store.Get(ctx, kindCounters, key)
	if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return 0, err
	}
	if err == nil {
		if err := decode(data, &current); err != nil {
			return 0, err
		}
	}

	current++
	out, err := encode(current)
	if err != nil {
		return 0, err
	}
	if err := store.Set(ctx, kindCounters, key, out); err != nil {
		return 0, err
	}
	return current, nil
}

var _ order.Repository = (*OrderRepository)(nil)
