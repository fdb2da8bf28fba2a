package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

// RestockRequest is the inbound stock payload
type RestockRequest struct {
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	UnitCost float64 `json:"unit_cost" binding:"required,gt=0"`
}

// CreateItemRequest seeds a new ledger record for a product
type CreateItemRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	ProductName string    `json:"product_name" binding:"required"`
	Quantity    int       `json:"quantity" binding:"gte=0"`
	UnitCost    float64   `json:"unit_cost" binding:"gte=0"`
}

// ItemResponse is one ledger record in API responses
type ItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Available   int             `json:"available"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Value       decimal.Decimal `json:"value"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Service exposes the stock ledger's admin surface. Reservation and release
// belong to the order and return pipelines; this service only seeds records,
// restocks, and reads levels.
type Service struct {
	stock  stock.Repository
	events shared.EventPublisher
	logger *zap.Logger
}

// NewService creates a new stock service
func NewService(stockRepo stock.Repository, events shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		stock:  stockRepo,
		events: events,
		logger: logger.Named("stock-service"),
	}
}

// CreateItem seeds the ledger record for a product
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	item, err := stock.NewStockItem(req.ProductID, req.ProductName, req.Quantity, decimal.NewFromFloat(req.UnitCost))
	if err != nil {
		return nil, err
	}

	if _, err := s.stock.FindByProduct(ctx, req.ProductID); err == nil {
		return nil, shared.ErrAlreadyExists
	}
	if err := s.stock.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishAggregateEvents(ctx, item)

	s.logger.Info("stock item created",
		zap.String("product_id", item.ProductID.String()),
		zap.String("product_name", item.ProductName),
		zap.Int("available", item.Available),
	)

	response := toItemResponse(item)
	return &response, nil
}

// Restock adds inbound units and resets the cost basis
func (s *Service) Restock(ctx context.Context, productID uuid.UUID, req RestockRequest) (*ItemResponse, error) {
	item, err := s.stock.Update(ctx, productID, func(item *stock.StockItem) error {
		return item.Restock(req.Quantity, decimal.NewFromFloat(req.UnitCost))
	})
	if err != nil {
		return nil, err
	}
	s.publishAggregateEvents(ctx, item)

	s.logger.Info("stock replenished",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", req.Quantity),
		zap.Int("available", item.Available),
	)

	response := toItemResponse(item)
	return &response, nil
}

// Get returns the ledger record for a product
func (s *Service) Get(ctx context.Context, productID uuid.UUID) (*ItemResponse, error) {
	item, err := s.stock.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := toItemResponse(item)
	return &response, nil
}

// CurrentLevels returns a snapshot of every ledger record
func (s *Service) CurrentLevels(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.stock.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = toItemResponse(&items[i])
	}
	return responses, nil
}

func (s *Service) publishAggregateEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}

func toItemResponse(item *stock.StockItem) ItemResponse {
	return ItemResponse{
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Available:   item.Available,
		UnitCost:    item.UnitCost,
		Value:       item.Value(),
		UpdatedAt:   item.UpdatedAt,
	}
}
