package stock

import (
	"context"

	"github.com/google/uuid"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

// ErrProductNotFound is returned when no ledger record exists for a product
var ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found in stock ledger")

// Repository defines the persistence boundary for the stock ledger.
//
// Update and UpdateMany give the read-modify-write discipline the
// concurrency model requires: the implementation serializes mutations
// per product, and UpdateMany is all-or-nothing across the products of
// one order so a multi-line reservation can never partially apply.
type Repository interface {
	// FindByProduct finds the ledger record for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockItem, error)

	// List returns a snapshot of all ledger records
	List(ctx context.Context) ([]StockItem, error)

	// Save creates or updates a ledger record with optimistic locking
	Save(ctx context.Context, item *StockItem) error

	// Update applies mutate to the record under the product's write lock.
	// Nothing is written when mutate returns an error.
	Update(ctx context.Context, productID uuid.UUID, mutate func(*StockItem) error) (*StockItem, error)

	// UpdateMany applies mutate to all listed products as one atomic unit:
	// locks are taken for every product up front, mutate runs against the
	// loaded records, and either every record is written or none is.
	UpdateMany(ctx context.Context, productIDs []uuid.UUID, mutate func(map[uuid.UUID]*StockItem) error) (map[uuid.UUID]*StockItem, error)
}
