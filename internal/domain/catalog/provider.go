// Package catalog defines the port to the catalog collaborator.
// The storefront's catalog CRUD lives outside this core; the order
// pipeline only needs product lookups and the analytics engine only
// needs the read-only view counters the catalog maintains.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog's view of a sellable product
type Product struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Provider supplies product data owned by the catalog collaborator
type Provider interface {
	// Product looks up a single product by ID
	Product(ctx context.Context, id uuid.UUID) (*Product, error)
	// Products looks up multiple products; missing IDs are absent from the result
	Products(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
}

// ViewCounter exposes the catalog's product view counters, consumed
// read-only by the analytics engine
type ViewCounter interface {
	ViewCounts(ctx context.Context) (map[uuid.UUID]int64, error)
}
