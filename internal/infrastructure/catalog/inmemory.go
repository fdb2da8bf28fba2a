// Package catalog provides implementations of the catalog collaborator
// ports. The storefront's catalog CRUD lives outside this core; these
// adapters only supply the product facts checkout and analytics need.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	domaincatalog "github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
)

// InMemoryProvider is a seedable catalog.Provider for development, tests,
// and single-node deployments that load the catalog at startup.
type InMemoryProvider struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domaincatalog.Product
	views    map[uuid.UUID]int64
}

// NewInMemoryProvider creates a provider seeded with the given products
func NewInMemoryProvider(products ...domaincatalog.Product) *InMemoryProvider {
	p := &InMemoryProvider{
		products: make(map[uuid.UUID]domaincatalog.Product, len(products)),
		views:    make(map[uuid.UUID]int64),
	}
	for _, product := range products {
		p.products[product.ID] = product
	}
	return p
}

// Add registers or replaces a product
func (p *InMemoryProvider) Add(product domaincatalog.Product) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products[product.ID] = product
}

// Product returns the product for id
func (p *InMemoryProvider) Product(_ context.Context, id uuid.UUID) (*domaincatalog.Product, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	product, ok := p.products[id]
	if !ok {
		return nil, fmt.Errorf("catalog: product %s not found", id)
	}
	return &product, nil
}

// Products returns the products for ids; missing IDs are absent from the result
func (p *InMemoryProvider) Products(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domaincatalog.Product, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[uuid.UUID]domaincatalog.Product, len(ids))
	for _, id := range ids {
		if product, ok := p.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

// RecordView increments the view counter for a product
func (p *InMemoryProvider) RecordView(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views[id]++
}

// ViewCounts returns a copy of the per-product view counters
func (p *InMemoryProvider) ViewCounts(_ context.Context) (map[uuid.UUID]int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[uuid.UUID]int64, len(p.views))
	for id, count := range p.views {
		out[id] = count
	}
	return out, nil
}

var (
	_ domaincatalog.Provider    = (*InMemoryProvider)(nil)
	_ domaincatalog.ViewCounter = (*InMemoryProvider)(nil)
)
