package returns

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeReturnRequest = "ReturnRequest"

// Event type constants
const (
	EventTypeReturnRequested = "ReturnRequested"
	EventTypeReturnApproved  = "ReturnApproved"
	EventTypeReturnRejected  = "ReturnRejected"
	EventTypeReturnRefunded  = "ReturnRefunded"
)

// ReturnItemInfo carries line information on return events
type ReturnItemInfo struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ReturnQuantity int       `json:"return_quantity"`
}

func returnItemInfos(r *ReturnRequest) []ReturnItemInfo {
	infos := make([]ReturnItemInfo, len(r.Items))
	for i, item := range r.Items {
		infos[i] = ReturnItemInfo{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ReturnQuantity: item.ReturnQuantity,
		}
	}
	return infos
}

// ReturnRequestedEvent is raised when a customer files a return
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID        `json:"return_id"`
	ReturnNumber string           `json:"return_number"`
	OrderNumber  string           `json:"order_number"`
	Reason       Reason           `json:"reason"`
	Items        []ReturnItemInfo `json:"items"`
	RefundAmount decimal.Decimal  `json:"refund_amount"`
}

// NewReturnRequestedEvent creates a new ReturnRequestedEvent
func NewReturnRequestedEvent(r *ReturnRequest) *ReturnRequestedEvent {
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeReturnRequest, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		OrderNumber:     r.OrderNumber,
		Reason:          r.Reason,
		Items:           returnItemInfos(r),
		RefundAmount:    r.RefundAmount,
	}
}

// EventType returns the event type name
func (e *ReturnRequestedEvent) EventType() string {
	return EventTypeReturnRequested
}

// ReturnApprovedEvent is raised when an admin approves a return
type ReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID `json:"return_id"`
	ReturnNumber string    `json:"return_number"`
	OrderNumber  string    `json:"order_number"`
	ActorID      string    `json:"actor_id"`
}

// NewReturnApprovedEvent creates a new ReturnApprovedEvent
func NewReturnApprovedEvent(r *ReturnRequest) *ReturnApprovedEvent {
	return &ReturnApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnApproved, AggregateTypeReturnRequest, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		OrderNumber:     r.OrderNumber,
		ActorID:         r.ApprovedBy,
	}
}

// EventType returns the event type name
func (e *ReturnApprovedEvent) EventType() string {
	return EventTypeReturnApproved
}

// ReturnRejectedEvent is raised when an admin rejects a return
type ReturnRejectedEvent struct {
	shared.BaseDomainEvent
	ReturnID        uuid.UUID `json:"return_id"`
	ReturnNumber    string    `json:"return_number"`
	OrderNumber     string    `json:"order_number"`
	RejectionReason string    `json:"rejection_reason"`
	ActorID         string    `json:"actor_id"`
}

// NewReturnRejectedEvent creates a new ReturnRejectedEvent
func NewReturnRejectedEvent(r *ReturnRequest) *ReturnRejectedEvent {
	return &ReturnRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRejected, AggregateTypeReturnRequest, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		OrderNumber:     r.OrderNumber,
		RejectionReason: r.RejectionReason,
		ActorID:         r.RejectedBy,
	}
}

// EventType returns the event type name
func (e *ReturnRejectedEvent) EventType() string {
	return EventTypeReturnRejected
}

// ReturnRefundedEvent is raised exactly once per return, when the refund is
// processed. Items are included so the restock path has everything it needs.
type ReturnRefundedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID        `json:"return_id"`
	ReturnNumber string           `json:"return_number"`
	OrderNumber  string           `json:"order_number"`
	Items        []ReturnItemInfo `json:"items"`
	RefundAmount decimal.Decimal  `json:"refund_amount"`
	RefundMethod string           `json:"refund_method"`
	ActorID      string           `json:"actor_id"`
}

// NewReturnRefundedEvent creates a new ReturnRefundedEvent
func NewReturnRefundedEvent(r *ReturnRequest) *ReturnRefundedEvent {
	return &ReturnRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRefunded, AggregateTypeReturnRequest, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		OrderNumber:     r.OrderNumber,
		Items:           returnItemInfos(r),
		RefundAmount:    r.RefundAmount,
		RefundMethod:    r.RefundMethod,
		ActorID:         r.RefundedBy,
	}
}

// EventType returns the event type name
func (e *ReturnRefundedEvent) EventType() string {
	return EventTypeReturnRefunded
}
