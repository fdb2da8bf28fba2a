package returns

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

// Domain errors for the return workflow
var (
	ErrReturnNotFound  = shared.NewDomainError("RETURN_NOT_FOUND", "Return request not found")
	ErrAlreadyRefunded = shared.NewDomainError("ALREADY_REFUNDED", "Return has already been refunded")
)

// Reason classifies why the customer is returning items
type Reason string

const (
	ReasonDefective      Reason = "defective"
	ReasonWrongItem      Reason = "wrong_item"
	ReasonNotAsDescribed Reason = "not_as_described"
	ReasonNoLongerNeeded Reason = "no_longer_needed"
	ReasonOther          Reason = "other"
)

// IsValid checks if the reason is a valid Reason
func (r Reason) IsValid() bool {
	switch r {
	case ReasonDefective, ReasonWrongItem, ReasonNotAsDescribed,
		ReasonNoLongerNeeded, ReasonOther:
		return true
	}
	return false
}

// String returns the string representation of Reason
func (r Reason) String() string {
	return string(r)
}

// Item is one returned line. ReturnQuantity may be less than the ordered
// Quantity for a partial return; OriginalPrice is the unit price paid at
// checkout, which fixes the refund amount regardless of later price changes.
type Item struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	ReturnQuantity int             `json:"return_quantity"`
	Condition      string          `json:"condition,omitempty"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
}

// RefundValue returns return quantity x original unit price for the line
func (i Item) RefundValue() decimal.Decimal {
	return i.OriginalPrice.Mul(decimal.NewFromInt(int64(i.ReturnQuantity)))
}

// ReturnRequest is the aggregate root for a return. It walks a strictly
// linear workflow; each stage stamps its own timestamp so the audit trail
// survives serialization. The refund step is idempotent at the aggregate
// level: a second ProcessRefund fails with ALREADY_REFUNDED and mutates
// nothing.
type ReturnRequest struct {
	shared.BaseAggregateRoot
	ReturnNumber      string          `json:"return_number"`
	OrderID           uuid.UUID       `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	Reason            Reason          `json:"reason"`
	Description       string          `json:"description,omitempty"`
	Items             []Item          `json:"items"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	RefundMethod      string          `json:"refund_method,omitempty"`
	Status            Status          `json:"status"`
	AdminNotes        string          `json:"admin_notes,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	ApprovedBy        string          `json:"approved_by,omitempty"`
	RejectedBy        string          `json:"rejected_by,omitempty"`
	PickupScheduledBy string          `json:"pickup_scheduled_by,omitempty"`
	PickedUpBy        string          `json:"picked_up_by,omitempty"`
	ReceivedBy        string          `json:"received_by,omitempty"`
	RefundedBy        string          `json:"refunded_by,omitempty"`
	ScheduledDate     *time.Time      `json:"scheduled_date,omitempty"`
	RequestedAt       time.Time       `json:"requested_at"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	RejectedAt        *time.Time      `json:"rejected_at,omitempty"`
	PickupScheduledAt *time.Time      `json:"pickup_scheduled_at,omitempty"`
	PickedUpAt        *time.Time      `json:"picked_up_at,omitempty"`
	ReceivedAt        *time.Time      `json:"received_at,omitempty"`
	RefundedAt        *time.Time      `json:"refunded_at,omitempty"`
}

// NewReturnRequest creates a return in pending_approval against a delivered
// order. alreadyReturned carries the per-product quantities claimed by other
// active (non-rejected) returns on the same order, so the cumulative return
// quantity can never exceed what was ordered.
func NewReturnRequest(returnNumber string, o *order.Order, reason Reason, description string, items []Item, alreadyReturned map[uuid.UUID]int) (*ReturnRequest, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_INPUT", "Return number cannot be empty")
	}
	if o == nil {
		return nil, shared.NewDomainError("INVALID_RETURN_INPUT", "Order is required")
	}
	if !o.IsDelivered() {
		return nil, shared.NewDomainError("INVALID_RETURN_INPUT",
			fmt.Sprintf("Returns are only accepted for delivered orders; order %s is %s", o.OrderNumber, o.Status))
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_RETURN_INPUT",
			fmt.Sprintf("Unknown return reason %q", reason))
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_RETURN_INPUT", "Return must contain at least one item")
	}

	refund := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(items))
	normalized := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_RETURN_INPUT", "Return item product ID cannot be empty")
		}
		if seen[item.ProductID] {
			return nil, shared.NewDomainError("INVALID_RETURN_INPUT",
				fmt.Sprintf("Duplicate product %s in return lines", item.ProductID))
		}
		seen[item.ProductID] = true

		line := o.GetItem(item.ProductID)
		if line == nil {
			return nil, shared.NewDomainError("INVALID_RETURN_INPUT",
				fmt.Sprintf("Product %s is not on order %s", item.ProductID, o.OrderNumber))
		}
		if item.ReturnQuantity <= 0 {
			return nil, shared.NewDomainError("INVALID_RETURN_INPUT",
				fmt.Sprintf("Return quantity for %s must be positive", line.Name))
		}
		remaining := line.Quantity - alreadyReturned[item.ProductID]
		if item.ReturnQuantity > remaining {
			return nil, shared.NewDomainError("INVALID_RETURN_INPUT",
				fmt.Sprintf("Cannot return %d of %s: only %d returnable", item.ReturnQuantity, line.Name, remaining))
		}

		normalized = append(normalized, Item{
			ProductID:      item.ProductID,
			ProductName:    line.Name,
			Quantity:       line.Quantity,
			ReturnQuantity: item.ReturnQuantity,
			Condition:      item.Condition,
			OriginalPrice:  line.UnitPrice,
		})
		refund = refund.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(item.ReturnQuantity))))
	}

	// The refund never exceeds what the customer actually paid for goods
	// (subtotal net of any discount).
	paid := o.Subtotal.Sub(o.Discount)
	if refund.GreaterThan(paid) {
		refund = paid
	}

	r := &ReturnRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      returnNumber,
		OrderID:           o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerName:      o.Customer.Name,
		CustomerEmail:     o.Customer.Email,
		Reason:            reason,
		Description:       strings.TrimSpace(description),
		Items:             normalized,
		RefundAmount:      refund,
		Status:            StatusPendingApproval,
		RequestedAt:       time.Now(),
	}

	r.AddDomainEvent(NewReturnRequestedEvent(r))

	return r, nil
}

// Approve moves the return to approved, recording who approved it
func (r *ReturnRequest) Approve(actorID, adminNotes string) error {
	if err := r.guard(StatusApproved); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusApproved
	r.AdminNotes = adminNotes
	r.ApprovedBy = actorID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewReturnApprovedEvent(r))
	return nil
}

// Reject closes the return before approval. Its quantities stop counting
// against the order's returnable amounts.
func (r *ReturnRequest) Reject(actorID, reason string) error {
	if err := r.guard(StatusRejected); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_RETURN_INPUT", "Rejection reason is required")
	}
	now := time.Now()
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.RejectedBy = actorID
	r.RejectedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewReturnRejectedEvent(r))
	return nil
}

// SchedulePickup records the pickup date and advances the workflow
func (r *ReturnRequest) SchedulePickup(date time.Time, actorID string) error {
	if err := r.guard(StatusPickupScheduled); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusPickupScheduled
	r.ScheduledDate = &date
	r.PickupScheduledBy = actorID
	r.PickupScheduledAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkPickedUp records that the carrier collected the items
func (r *ReturnRequest) MarkPickedUp(actorID string) error {
	if err := r.guard(StatusPickedUp); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusPickedUp
	r.PickedUpBy = actorID
	r.PickedUpAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkReceived records warehouse receipt of the returned items
func (r *ReturnRequest) MarkReceived(actorID string) error {
	if err := r.guard(StatusReceived); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusReceived
	r.ReceivedBy = actorID
	r.ReceivedAt = &now
	r.UpdatedAt = now
	return nil
}

// ProcessRefund completes the return. Calling it on an already refunded
// return fails with ALREADY_REFUNDED and leaves the aggregate untouched, so
// a retried refund can never double-credit stock or money.
func (r *ReturnRequest) ProcessRefund(actorID, method string) error {
	if r.Status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if err := r.guard(StatusRefunded); err != nil {
		return err
	}
	now := time.Now()
	r.Status = StatusRefunded
	r.RefundMethod = method
	r.RefundedBy = actorID
	r.RefundedAt = &now
	r.UpdatedAt = now
	r.AddDomainEvent(NewReturnRefundedEvent(r))
	return nil
}

// ReturnedQuantities returns the per-product quantities on this return
func (r *ReturnRequest) ReturnedQuantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.Items))
	for _, item := range r.Items {
		out[item.ProductID] = item.ReturnQuantity
	}
	return out
}

func (r *ReturnRequest) guard(target Status) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_RETURN_TRANSITION",
			fmt.Sprintf("Cannot move return from %s to %s", r.Status, target))
	}
	return nil
}
