package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

// StockItem is the ledger record for one product. Available quantity is
// mutated only through Reserve/Release/Restock so the availableQuantity >= 0
// invariant can never be broken from outside the aggregate. UnitCost is the
// cost basis captured at the last restock and is the COGS basis snapshotted
// onto order lines at sale time.
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Available   int             `json:"available"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// NewStockItem creates a ledger record for a product
func NewStockItem(productID uuid.UUID, productName string, available int, unitCost decimal.Decimal) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if available < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Available quantity cannot be negative")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		ProductName:       productName,
		Available:         available,
		UnitCost:          unitCost,
	}, nil
}

// Reserve decrements the available quantity. Fails with INSUFFICIENT_STOCK
// and leaves the record untouched when fewer than qty units are available.
func (s *StockItem) Reserve(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if s.Available < qty {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", s.ProductName, qty, s.Available))
	}

	s.Available -= qty
	s.touch()
	s.AddDomainEvent(NewStockReservedEvent(s, qty))

	return nil
}

// Release increments the available quantity. Exactly-once semantics are the
// caller's responsibility: the order state machine and the return workflow
// guard their release paths so a unit is never released twice.
func (s *StockItem) Release(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	s.Available += qty
	s.touch()
	s.AddDomainEvent(NewStockReleasedEvent(s, qty))

	return nil
}

// Restock adds inbound units and resets the cost basis
func (s *StockItem) Restock(qty int, unitCost decimal.Decimal) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	s.Available += qty
	s.UnitCost = unitCost
	s.touch()

	return nil
}

// IsBelow reports whether the available quantity is under the given threshold
func (s *StockItem) IsBelow(threshold int) bool {
	return s.Available < threshold
}

// Value returns the inventory value of this record (available x unit cost)
func (s *StockItem) Value() decimal.Decimal {
	return s.UnitCost.Mul(decimal.NewFromInt(int64(s.Available)))
}

func (s *StockItem) touch() {
	s.UpdatedAt = time.Now()
}
