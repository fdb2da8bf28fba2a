package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/promo"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

// CheckoutPolicy carries the pricing rules applied at order creation
type CheckoutPolicy struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal // 0 disables free shipping
	LowStockThreshold     int
}

// Service orchestrates the checkout pipeline and the order state machine.
// Creation is reserve-first, redeem-last: stock is reserved and the order
// persisted before the coupon counter moves, and a failed redemption
// compensates by cancelling the order and releasing the reservation, so a
// coupon use is never consumed by an order that does not exist.
type Service struct {
	orders  order.Repository
	stock   stock.Repository
	coupons promo.Repository
	catalog catalog.Provider
	events  shared.EventPublisher
	logger  *zap.Logger
	policy  CheckoutPolicy
}

// NewService creates a new order service
func NewService(
	orders order.Repository,
	stockRepo stock.Repository,
	coupons promo.Repository,
	catalogProvider catalog.Provider,
	events shared.EventPublisher,
	logger *zap.Logger,
	policy CheckoutPolicy,
) *Service {
	return &Service{
		orders:  orders,
		stock:   stockRepo,
		coupons: coupons,
		catalog: catalogProvider,
		events:  events,
		logger:  logger.Named("order-service"),
		policy:  policy,
	}
}

// CreateOrder runs the full checkout: resolve products, validate the coupon,
// reserve stock atomically across all lines, persist the order in pending,
// and finally redeem the coupon.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if err := validateLines(req.Lines); err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, len(req.Lines))
	for i, line := range req.Lines {
		productIDs[i] = line.ProductID
	}

	products, err := s.catalog.Products(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	subtotal := decimal.Zero
	categories := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_ORDER_INPUT",
				fmt.Sprintf("Unknown product %s", line.ProductID))
		}
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		categories = append(categories, product.Category)
	}

	// Read-only coupon check up front so an invalid code fails the checkout
	// before any stock moves.
	discount := decimal.Zero
	couponCode := ""
	if req.CouponCode != "" {
		couponCode = promo.NormalizeCode(req.CouponCode)
		coupon, err := s.coupons.FindByCode(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		discount, err = coupon.Validate(subtotal, categories, productIDs, time.Now())
		if err != nil {
			return nil, err
		}
	}

	// Atomic multi-line reservation; unit cost is captured from the ledger
	// at this moment and travels with the order line.
	reserved, err := s.stock.UpdateMany(ctx, productIDs, func(items map[uuid.UUID]*stock.StockItem) error {
		for _, line := range req.Lines {
			item, ok := items[line.ProductID]
			if !ok {
				return stock.ErrProductNotFound
			}
			if err := item.Reserve(line.Quantity); err != nil {
				return err
			}
			if s.policy.LowStockThreshold > 0 && item.IsBelow(s.policy.LowStockThreshold) {
				item.AddDomainEvent(stock.NewStockBelowThresholdEvent(item, s.policy.LowStockThreshold))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, len(req.Lines))
	for i, line := range req.Lines {
		product := products[line.ProductID]
		items[i] = order.Item{
			ProductID: line.ProductID,
			Name:      product.Name,
			Category:  product.Category,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			UnitCost:  reserved[line.ProductID].UnitCost,
		}
	}

	orderNumber, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		s.releaseLines(ctx, req.Lines)
		return nil, err
	}

	o, err := order.NewOrder(orderNumber,
		order.Customer{Name: req.Customer.Name, Email: req.Customer.Email, Phone: req.Customer.Phone},
		order.Address{
			Line1:      req.ShippingAddress.Line1,
			Line2:      req.ShippingAddress.Line2,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
		},
		items,
		req.PaymentMethod,
		order.Pricing{
			Discount:     discount,
			CouponCode:   couponCode,
			TaxRate:      s.policy.TaxRate,
			ShippingCost: s.shippingFor(subtotal),
		},
	)
	if err != nil {
		s.releaseLines(ctx, req.Lines)
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		s.releaseLines(ctx, req.Lines)
		return nil, err
	}

	// Redeem last, under the per-code lock with a fresh validation; the
	// usage ceiling cannot be raced past by concurrent checkouts.
	if couponCode != "" {
		_, err := s.coupons.Update(ctx, couponCode, func(c *promo.Coupon) error {
			if _, err := c.Validate(subtotal, categories, productIDs, time.Now()); err != nil {
				return err
			}
			return c.Redeem()
		})
		if err != nil {
			s.compensateFailedRedeem(ctx, o, req.Lines)
			return nil, err
		}
	}

	s.publishAggregateEvents(ctx, o)
	for _, item := range reserved {
		s.publishAggregateEvents(ctx, item)
	}

	s.logger.Info("order created",
		zap.String("order_number", o.OrderNumber),
		zap.String("order_id", o.ID.String()),
		zap.Int("lines", len(o.Items)),
		zap.String("total", o.Total.StringFixed(2)),
	)

	response := ToOrderResponse(o)
	return &response, nil
}

// Transition applies an admin status change. An optimistic-lock conflict is
// retried once before surfacing; a transition to cancelled releases every
// line's reservation exactly once.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, target, actorID, notes string) (*OrderResponse, error) {
	status := order.Status(target)

	updated, err := s.orders.Update(ctx, orderID, func(o *order.Order) error {
		return o.TransitionTo(status, actorID, notes)
	})
	if shared.IsCode(err, "CONCURRENCY_CONFLICT") {
		updated, err = s.orders.Update(ctx, orderID, func(o *order.Order) error {
			return o.TransitionTo(status, actorID, notes)
		})
	}
	if err != nil {
		return nil, err
	}

	if status == order.StatusCancelled {
		s.releaseOrderStock(ctx, updated)
	}

	s.publishAggregateEvents(ctx, updated)

	response := ToOrderResponse(updated)
	return &response, nil
}

// Get returns an order by ID
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByNumber returns an order by its human-readable number
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List returns all orders, newest first
func (s *Service) List(ctx context.Context) ([]OrderResponse, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(all))
	for i := range all {
		responses[i] = ToOrderResponse(&all[i])
	}
	return responses, nil
}

// History returns the ordered status history for an order
func (s *Service) History(ctx context.Context, orderID uuid.UUID) ([]StatusChangeResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	history := make([]StatusChangeResponse, len(o.StatusHistory))
	for i, change := range o.StatusHistory {
		history[i] = StatusChangeResponse{
			Status:    change.Status.String(),
			Timestamp: change.Timestamp,
			ActorID:   change.ActorID,
			Notes:     change.Notes,
		}
	}
	return history, nil
}

// NextStatuses returns the admin-selectable transitions for an order
func (s *Service) NextStatuses(ctx context.Context, orderID uuid.UUID) ([]string, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next := order.NextPossibleStatuses(o.Status)
	out := make([]string, len(next))
	for i, status := range next {
		out[i] = status.String()
	}
	return out, nil
}

func (s *Service) shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if s.policy.FreeShippingThreshold.IsPositive() &&
		subtotal.GreaterThanOrEqual(s.policy.FreeShippingThreshold) {
		return decimal.Zero
	}
	return s.policy.ShippingFee
}

// compensateFailedRedeem undoes a checkout whose coupon redemption lost the
// race: the persisted order is cancelled and the reservation released.
func (s *Service) compensateFailedRedeem(ctx context.Context, o *order.Order, lines []CreateOrderLine) {
	cancelled, err := s.orders.Update(ctx, o.ID, func(cur *order.Order) error {
		return cur.TransitionTo(order.StatusCancelled, "system", "Coupon redemption failed")
	})
	if err != nil {
		s.logger.Error("failed to cancel order after redeem failure",
			zap.String("order_id", o.ID.String()), zap.Error(err))
		return
	}
	s.releaseLines(ctx, lines)
	s.publishAggregateEvents(ctx, cancelled)
}

// releaseLines returns reserved units to the ledger. The cancellation is
// already committed when this runs, so a store fault is retried once before
// the shortfall is logged for manual reconciliation.
func (s *Service) releaseLines(ctx context.Context, lines []CreateOrderLine) {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	release := func() error {
		_, err := s.stock.UpdateMany(ctx, ids, func(items map[uuid.UUID]*stock.StockItem) error {
			for _, line := range lines {
				if item, ok := items[line.ProductID]; ok {
					if err := item.Release(line.Quantity); err != nil {
						return err
					}
				}
			}
			return nil
		})
		return err
	}
	err := release()
	if err != nil {
		s.logger.Warn("stock release failed, retrying", zap.Error(err))
		err = release()
	}
	if err != nil {
		s.logger.Error("failed to release reserved stock; ledger under-credited", zap.Error(err))
	}
}

func (s *Service) releaseOrderStock(ctx context.Context, o *order.Order) {
	lines := make([]CreateOrderLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = CreateOrderLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	s.releaseLines(ctx, lines)
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

func validateLines(lines []CreateOrderLine) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_ORDER_INPUT", "Order must contain at least one line")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_ORDER_INPUT", "Line product ID cannot be empty")
		}
		if line.Quantity <= 0 {
			return shared.NewDomainError("INVALID_ORDER_INPUT",
				fmt.Sprintf("Line quantity for %s must be positive", line.ProductID))
		}
		if seen[line.ProductID] {
			return shared.NewDomainError("INVALID_ORDER_INPUT",
				fmt.Sprintf("Duplicate product %s in order lines", line.ProductID))
		}
		seen[line.ProductID] = true
	}
	return nil
}
