package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence boundary for orders.
//
// Update performs a read-validate-write under the order's write lock, so a
// status transition is one atomic step: two concurrent admin actions cannot
// both succeed from the same stale status.
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// List returns all orders, newest first
	List(ctx context.Context) ([]Order, error)

	// Save creates or updates an order with optimistic locking
	Save(ctx context.Context, o *Order) error

	// Update applies mutate to the order under its write lock. Nothing is
	// written when mutate returns an error.
	Update(ctx context.Context, id uuid.UUID, mutate func(*Order) error) (*Order, error)

	// NextOrderNumber allocates the next unique human-readable order number
	NextOrderNumber(ctx context.Context) (string, error)
}
