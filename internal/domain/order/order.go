package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

// Domain errors for the order state machine
var (
	ErrOrderNotFound = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
)

// Customer identifies the buyer on an order
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Address is the shipping address captured at checkout
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// Item is a line item on an order. UnitCost is the ledger cost basis
// snapshotted at reservation time; analytics computes COGS from it rather
// than from the product's current cost.
type Item struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// LineTotal returns quantity x unit price for the line
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusChange is one entry in an order's append-only status history
type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Notes     string    `json:"notes,omitempty"`
}

// Pricing carries the checkout-time totals computation inputs
type Pricing struct {
	Discount     decimal.Decimal
	CouponCode   string
	TaxRate      decimal.Decimal
	ShippingCost decimal.Decimal
}

// Order is the aggregate root for a customer order. Status changes flow
// only through TransitionTo (admin path) and MarkReturned/MarkRefunded
// (return workflow path); the status history is append-only and its last
// entry always equals Status.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string          `json:"order_number"`
	Customer        Customer        `json:"customer"`
	ShippingAddress Address         `json:"shipping_address"`
	Items           []Item          `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	Status          Status          `json:"status"`
	StatusHistory   []StatusChange  `json:"status_history"`
}

// NewOrder creates an order in pending status with its first history entry.
// Totals: subtotal = sum of line totals; tax applies to the discounted
// subtotal; total = subtotal - discount + tax + shipping. With no coupon the
// spec shape total = subtotal + tax + shipping holds exactly.
func NewOrder(orderNumber string, customer Customer, address Address, items []Item, paymentMethod string, pricing Pricing) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_INPUT", "Order number cannot be empty")
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_INPUT", "Customer name cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER_INPUT", "Order must contain at least one item")
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_INPUT", "Payment method cannot be empty")
	}

	subtotal := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ORDER_INPUT", "Item product ID cannot be empty")
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ORDER_INPUT",
				fmt.Sprintf("Item quantity for %s must be positive", item.Name))
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_ORDER_INPUT",
				fmt.Sprintf("Item price for %s cannot be negative", item.Name))
		}
		if seen[item.ProductID] {
			return nil, shared.NewDomainError("INVALID_ORDER_INPUT",
				fmt.Sprintf("Duplicate product %s in order lines", item.ProductID))
		}
		seen[item.ProductID] = true
		subtotal = subtotal.Add(item.LineTotal())
	}

	discount := pricing.Discount
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ORDER_INPUT", "Discount cannot be negative")
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(pricing.TaxRate).Round(2)
	total := taxable.Add(tax).Add(pricing.ShippingCost)

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Customer:          customer,
		ShippingAddress:   address,
		Items:             items,
		Subtotal:          subtotal,
		Discount:          discount,
		CouponCode:        pricing.CouponCode,
		Tax:               tax,
		ShippingCost:      pricing.ShippingCost,
		Total:             total,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     "pending",
		Status:            StatusPending,
	}
	o.appendHistory(StatusPending, "system", "Order placed")

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// TransitionTo applies an admin-selected status change. The target must be
// in the NextPossibleStatuses allow-list for the current status; a same-
// status transition is rejected so the history stays meaningful, and the
// returned/refunded statuses are never reachable through this path.
func (o *Order) TransitionTo(target Status, actorID, notes string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Unknown order status %q", target))
	}
	if target == o.Status {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Order is already %s", o.Status))
	}

	allowed := false
	for _, next := range NextPossibleStatuses(o.Status) {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	from := o.Status
	o.Status = target
	o.appendHistory(target, actorID, notes)

	if target == StatusCancelled {
		o.AddDomainEvent(NewOrderCancelledEvent(o, notes))
	} else {
		o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, actorID))
	}

	return nil
}

// MarkReturned records the return-workflow consequence on a delivered
// order. Not reachable through TransitionTo.
func (o *Order) MarkReturned(actorID, notes string) error {
	if !o.Status.CanTransitionTo(StatusReturned) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot mark order returned from %s status", o.Status))
	}

	from := o.Status
	o.Status = StatusReturned
	o.appendHistory(StatusReturned, actorID, notes)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, actorID))

	return nil
}

// MarkRefunded closes out a returned order. Terminal; only the return
// workflow's refund step takes this edge.
func (o *Order) MarkRefunded(actorID, notes string) error {
	if !o.Status.CanTransitionTo(StatusRefunded) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot mark order refunded from %s status", o.Status))
	}

	from := o.Status
	o.Status = StatusRefunded
	o.appendHistory(StatusRefunded, actorID, notes)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, actorID))

	return nil
}

// SetPaymentStatus records the opaque status supplied by the payment
// collaborator; the core does not interpret it
func (o *Order) SetPaymentStatus(status string) {
	o.PaymentStatus = status
	o.UpdatedAt = time.Now()
}

// History returns the append-only status history in order
func (o *Order) History() []StatusChange {
	return o.StatusHistory
}

// IsDelivered returns true if the order is delivered
func (o *Order) IsDelivered() bool {
	return o.Status == StatusDelivered
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemQuantity returns the ordered quantity for a product, 0 if absent
func (o *Order) ItemQuantity(productID uuid.UUID) int {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// GetItem returns a line item by product ID
func (o *Order) GetItem(productID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// appendHistory stamps the entry with the state machine's clock; caller-
// supplied timestamps are never trusted
func (o *Order) appendHistory(status Status, actorID, notes string) {
	now := time.Now()
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status:    status,
		Timestamp: now,
		ActorID:   actorID,
		Notes:     notes,
	})
	o.UpdatedAt = now
}
