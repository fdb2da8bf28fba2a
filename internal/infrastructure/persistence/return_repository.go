package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/returns"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
)

// ReturnRepository implements returns.Repository on the kv boundary
type ReturnRepository struct {
	store kv.Store
	locks *KeyedMutex
}

// NewReturnRepository creates a new return repository
func NewReturnRepository(store kv.Store) *ReturnRepository {
	return &ReturnRepository{
		store: store,
		locks: NewKeyedMutex(defaultStripes),
	}
}

// FindByID finds a return request by ID
func (r *ReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.ReturnRequest, error) {
	data, err := r.store.Get(ctx, kindReturns, id.String())
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, returns.ErrReturnNotFound
		}
		return nil, err
	}

	var req returns.ReturnRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByReturnNumber finds a return by its human-readable number
func (r *ReturnRepository) FindByReturnNumber(ctx context.Context, returnNumber string) (*returns.ReturnRequest, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ReturnNumber == returnNumber {
			return &all[i], nil
		}
	}
	return nil, returns.ErrReturnNotFound
}

// FindByOrder returns all returns filed against an order
func (r *ReturnRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]returns.ReturnRequest, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]returns.ReturnRequest, 0)
	for i := range all {
		if all[i].OrderID == orderID {
			matched = append(matched, all[i])
		}
	}
	return matched, nil
}

// List returns all return requests, newest first
func (r *ReturnRepository) List(ctx context.Context) ([]returns.ReturnRequest, error) {
	records, err := r.store.List(ctx, kindReturns)
	if err != nil {
		return nil, err
	}

	all := make([]returns.ReturnRequest, 0, len(records))
	for _, rec := range records {
		var req returns.ReturnRequest
		if err := decode(rec.Value, &req); err != nil {
			return nil, err
		}
		all = append(all, req)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].RequestedAt.After(all[j].RequestedAt)
	})
	return all, nil
}

// Save creates or updates a return request with optimistic locking
func (r *ReturnRepository) Save(ctx context.Context, req *returns.ReturnRequest) error {
	key := req.ID.String()
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := checkVersion(ctx, r.store, kindReturns, key, req.Version); err != nil {
		return err
	}
	req.IncrementVersion()

	data, err := encode(req)
	if err != nil {
		req.Version--
		return err
	}
	return r.store.Set(ctx, kindReturns, key, data)
}

// Update applies mutate to the return under its write lock
func (r *ReturnRepository) Update(ctx context.Context, id uuid.UUID, mutate func(*returns.ReturnRequest) error) (*returns.ReturnRequest, error) {
	key := id.String()
	unlock := r.locks.Lock(key)
	defer unlock()

	data, err := r.store.Get(ctx, kindReturns, key)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, returns.ErrReturnNotFound
		}
		return nil, err
	}

	var req returns.ReturnRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if err := mutate(&req); err != nil {
		return nil, err
	}
	req.IncrementVersion()

	out, err := encode(&req)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, kindReturns, key, out); err != nil {
		return nil, err
	}
	return &req, nil
}

// ActiveReturnedQuantities sums per-product quantities across the order's
// non-rejected returns
func (r *ReturnRepository) ActiveReturnedQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	existing, err := r.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]int)
	for i := range existing {
		if !existing[i].Status.IsActive() {
			continue
		}
		for pid, qty := range existing[i].ReturnedQuantities() {
			totals[pid] += qty
		}
	}
	return totals, nil
}

// NextReturnNumber allocates the next RET-<yyyymmdd>-<seq> number
func (r *ReturnRepository) NextReturnNumber(ctx context.Context) (string, error) {
	day := time.Now().Format("20060102")
	counterKey := "return:" + day

	unlock := r.locks.Lock("counter:" + counterKey)
	defer unlock()

	seq, err := nextCounter(ctx, r.store, counterKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RET-%s-%04d", day, seq), nil
}

var _ returns.Repository = (*ReturnRepository)(nil)
