package returns

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence boundary for return requests
type Repository interface {
	// FindByID finds a return request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnRequest, error)

	// FindByReturnNumber finds a return by its human-readable number
	FindByReturnNumber(ctx context.Context, returnNumber string) (*ReturnRequest, error)

	// FindByOrder returns all returns filed against an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ReturnRequest, error)

	// List returns all return requests, newest first
	List(ctx context.Context) ([]ReturnRequest, error)

	// Save creates or updates a return request with optimistic locking
	Save(ctx context.Context, r *ReturnRequest) error

	// Update applies mutate to the return under its write lock. Nothing is
	// written when mutate returns an error.
	Update(ctx context.Context, id uuid.UUID, mutate func(*ReturnRequest) error) (*ReturnRequest, error)

	// ActiveReturnedQuantities sums per-product return quantities across the
	// order's non-rejected returns. New returns validate against it so the
	// order can never be over-returned.
	ActiveReturnedQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error)

	// NextReturnNumber allocates the next unique human-readable return number
	NextReturnNumber(ctx context.Context) (string, error)
}
