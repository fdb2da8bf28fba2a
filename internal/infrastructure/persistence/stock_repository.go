package persistence

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
)

// StockRepository implements stock.Repository on the kv boundary. Records
// are keyed by product ID; Update and UpdateMany serialize all mutations
// per product through the keyed mutex.
type StockRepository struct {
	store kv.Store
	locks *KeyedMutex
}

// NewStockRepository creates a new stock repository
func NewStockRepository(store kv.Store) *StockRepository {
	return &StockRepository{
		store: store,
		locks: NewKeyedMutex(defaultStripes),
	}
}

// FindByProduct finds the ledger record for a product
func (r *StockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	return r.load(ctx, productID)
}

// List returns a snapshot of all ledger records, ordered by product name
func (r *StockRepository) List(ctx context.Context) ([]stock.StockItem, error) {
	records, err := r.store.List(ctx, kindStock)
	if err != nil {
		return nil, err
	}

	items := make([]stock.StockItem, 0, len(records))
	for _, rec := range records {
		var item stock.StockItem
		if err := decode(rec.Value, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductName < items[j].ProductName
	})
	return items, nil
}

// Save creates or updates a ledger record with optimistic locking
func (r *StockRepository) Save(ctx context.Context, item *stock.StockItem) error {
	key := item.ProductID.String()
	unlock := r.locks.Lock(key)
	defer unlock()

	if err := checkVersion(ctx, r.store, kindStock, key, item.Version); err != nil {
		return err
	}
	item.IncrementVersion()

	data, err := encode(item)
	if err != nil {
		item.Version--
		return err
	}
	return r.store.Set(ctx, kindStock, key, data)
}

// Update applies mutate to the record under the product's write lock
func (r *StockRepository) Update(ctx context.Context, productID uuid.UUID, mutate func(*stock.StockItem) error) (*stock.StockItem, error) {
	unlock := r.locks.Lock(productID.String())
	defer unlock()

	item, err := r.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := mutate(item); err != nil {
		return nil, err
	}
	if err := r.write(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateMany applies mutate to all listed products as one atomic unit.
// Every record is loaded under its lock first; when mutate fails, nothing
// is written and other readers never see a partial reservation.
func (r *StockRepository) UpdateMany(ctx context.Context, productIDs []uuid.UUID, mutate func(map[uuid.UUID]*stock.StockItem) error) (map[uuid.UUID]*stock.StockItem, error) {
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = id.String()
	}
	unlock := r.locks.LockAll(keys)
	defer unlock()

	items := make(map[uuid.UUID]*stock.StockItem, len(productIDs))
	for _, id := range productIDs {
		item, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		items[id] = item
	}

	if err := mutate(items); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := r.write(ctx, item); err != nil {
			// A write failure here is a store fault, not a domain conflict;
			// locks are still held so no other writer has seen partial state.
			return nil, err
		}
	}
	return items, nil
}

func (r *StockRepository) load(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	data, err := r.store.Get(ctx, kindStock, productID.String())
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, stock.ErrProductNotFound
		}
		return nil, err
	}

	var item stock.StockItem
	if err := decode(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *StockRepository) write(ctx context.Context, item *stock.StockItem) error {
	item.IncrementVersion()
	data, err := encode(item)
	if err != nil {
		item.Version--
		return err
	}
	return r.store.Set(ctx, kindStock, item.ProductID.String(), data)
}

var _ stock.Repository = (*StockRepository)(nil)
