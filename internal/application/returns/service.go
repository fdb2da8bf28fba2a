package returns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/returns"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

// Service drives the return workflow. The refund step is the only place
// that touches stock or the parent order, and it runs off the aggregate's
// own idempotence guard: a retried refund surfaces ALREADY_REFUNDED before
// any stock or order mutation can repeat.
type Service struct {
	returns returns.Repository
	orders  order.Repository
	stock   stock.Repository
	events  shared.EventPublisher
	logger  *zap.Logger
}

// NewService creates a new return service
func NewService(
	returnsRepo returns.Repository,
	orders order.Repository,
	stockRepo stock.Repository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		returns: returnsRepo,
		orders:  orders,
		stock:   stockRepo,
		events:  events,
		logger:  logger.Named("return-service"),
	}
}

// RequestReturn files a return against a delivered order. Quantities are
// validated against the order lines net of other active returns.
func (s *Service) RequestReturn(ctx context.Context, req RequestReturnRequest) (*ReturnResponse, error) {
	o, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	alreadyReturned, err := s.returns.ActiveReturnedQuantities(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	returnNumber, err := s.returns.NextReturnNumber(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]returns.Item, len(req.Lines))
	for i, line := range req.Lines {
		items[i] = returns.Item{
			ProductID:      line.ProductID,
			ReturnQuantity: line.ReturnQuantity,
			Condition:      line.Condition,
		}
	}

	r, err := returns.NewReturnRequest(returnNumber, o, returns.Reason(req.Reason), req.Description, items, alreadyReturned)
	if err != nil {
		return nil, err
	}

	if err := s.returns.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publishAggregateEvents(ctx, r)

	s.logger.Info("return requested",
		zap.String("return_number", r.ReturnNumber),
		zap.String("order_number", r.OrderNumber),
		zap.String("refund_amount", r.RefundAmount.StringFixed(2)),
	)

	response := ToReturnResponse(r)
	return &response, nil
}

// Approve moves a pending return to approved
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actorID, notes string) (*ReturnResponse, error) {
	return s.update(ctx, id, func(r *returns.ReturnRequest) error {
		return r.Approve(actorID, notes)
	})
}

// Reject closes a pending return with a reason
func (s *Service) Reject(ctx context.Context, id uuid.UUID, actorID, reason string) (*ReturnResponse, error) {
	return s.update(ctx, id, func(r *returns.ReturnRequest) error {
		return r.Reject(actorID, reason)
	})
}

// SchedulePickup records the carrier pickup date
func (s *Service) SchedulePickup(ctx context.Context, id uuid.UUID, date time.Time, actorID string) (*ReturnResponse, error) {
	return s.update(ctx, id, func(r *returns.ReturnRequest) error {
		return r.SchedulePickup(date, actorID)
	})
}

// MarkPickedUp records that the carrier collected the items
func (s *Service) MarkPickedUp(ctx context.Context, id uuid.UUID, actorID string) (*ReturnResponse, error) {
	return s.update(ctx, id, func(r *returns.ReturnRequest) error {
		return r.MarkPickedUp(actorID)
	})
}

// MarkReceived records warehouse receipt of the returned items
func (s *Service) MarkReceived(ctx context.Context, id uuid.UUID, actorID string) (*ReturnResponse, error) {
	return s.update(ctx, id, func(r *returns.ReturnRequest) error {
		return r.MarkReceived(actorID)
	})
}

// ProcessRefund completes a received return: the return goes to refunded,
// the returned units go back to the stock ledger, and the parent order
// moves to returned and then refunded. A second call fails with
// ALREADY_REFUNDED before any of those side effects can repeat.
func (s *Service) ProcessRefund(ctx context.Context, id uuid.UUID, actorID, method string) (*ReturnResponse, error) {
	updated, err := s.returns.Update(ctx, id, func(r *returns.ReturnRequest) error {
		return r.ProcessRefund(actorID, method)
	})
	if err != nil {
		return nil, err
	}

	s.restockReturnedItems(ctx, updated)
	s.closeParentOrder(ctx, updated, actorID)
	s.publishAggregateEvents(ctx, updated)

	s.logger.Info("refund processed",
		zap.String("return_number", updated.ReturnNumber),
		zap.String("order_number", updated.OrderNumber),
		zap.String("refund_amount", updated.RefundAmount.StringFixed(2)),
		zap.String("method", method),
	)

	response := ToReturnResponse(updated)
	return &response, nil
}

// Get returns a return request by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	r, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(r)
	return &response, nil
}

// List returns all return requests, newest first
func (s *Service) List(ctx context.Context) ([]ReturnResponse, error) {
	all, err := s.returns.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]ReturnResponse, len(all))
	for i := range all {
		responses[i] = ToReturnResponse(&all[i])
	}
	return responses, nil
}

// ListByOrder returns all returns filed against an order
func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ReturnResponse, error) {
	all, err := s.returns.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	responses := make([]ReturnResponse, len(all))
	for i := range all {
		responses[i] = ToReturnResponse(&all[i])
	}
	return responses, nil
}

func (s *Service) update(ctx context.Context, id uuid.UUID, mutate func(*returns.ReturnRequest) error) (*ReturnResponse, error) {
	updated, err := s.returns.Update(ctx, id, mutate)
	if err != nil {
		return nil, err
	}
	s.publishAggregateEvents(ctx, updated)

	response := ToReturnResponse(updated)
	return &response, nil
}

// restockReturnedItems releases each returned unit back to the ledger as
// one atomic unit across the return's products. The refund is already
// committed at this point, so a store fault here is retried once before
// the shortfall is logged for manual reconciliation.
func (s *Service) restockReturnedItems(ctx context.Context, r *returns.ReturnRequest) {
	ids := make([]uuid.UUID, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ProductID
	}

	release := func() (map[uuid.UUID]*stock.StockItem, error) {
		return s.stock.UpdateMany(ctx, ids, func(items map[uuid.UUID]*stock.StockItem) error {
			for _, line := range r.Items {
				if item, ok := items[line.ProductID]; ok {
					if err := item.Release(line.ReturnQuantity); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}

	restocked, err := release()
	if err != nil {
		s.logger.Warn("restock of returned items failed, retrying",
			zap.String("return_number", r.ReturnNumber), zap.Error(err))
		restocked, err = release()
	}
	if err != nil {
		s.logger.Error("failed to restock returned items; ledger under-credited",
			zap.String("return_number", r.ReturnNumber), zap.Error(err))
		return
	}
	for _, item := range restocked {
		s.publishAggregateEvents(ctx, item)
	}
}

// closeParentOrder moves the parent order through returned into refunded.
// A partial return refunded earlier may have advanced the order already; a
// transition that is no longer applicable is skipped, not an error.
func (s *Service) closeParentOrder(ctx context.Context, r *returns.ReturnRequest, actorID string) {
	updated, err := s.orders.Update(ctx, r.OrderID, func(o *order.Order) error {
		if o.Status == order.StatusDelivered {
			if err := o.MarkReturned(actorID, "Return "+r.ReturnNumber+" refunded"); err != nil {
				return err
			}
		}
		if o.Status == order.StatusReturned {
			return o.MarkRefunded(actorID, "Refund issued for "+r.ReturnNumber)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to close parent order",
			zap.String("order_id", r.OrderID.String()), zap.Error(err))
		return
	}
	s.publishAggregateEvents(ctx, updated)
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
