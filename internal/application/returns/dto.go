package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/returns"
)

// RequestReturnLine is one requested return line
type RequestReturnLine struct {
	ProductID      uuid.UUID `json:"product_id" binding:"required"`
	ReturnQuantity int       `json:"return_quantity" binding:"required,gt=0"`
	Condition      string    `json:"condition"`
}

// RequestReturnRequest is the customer-facing return filing payload
type RequestReturnRequest struct {
	OrderID     uuid.UUID           `json:"order_id" binding:"required"`
	Reason      string              `json:"reason" binding:"required"`
	Description string              `json:"description"`
	Lines       []RequestReturnLine `json:"lines" binding:"required,min=1,dive"`
}

// ReviewRequest carries admin approval/rejection input
type ReviewRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"` // required on rejection
}

// SchedulePickupRequest carries the pickup date
type SchedulePickupRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

// RefundRequest carries the refund method
type RefundRequest struct {
	Method string `json:"method" binding:"required"`
}

// ItemResponse is one return line in API responses
type ItemResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	ReturnQuantity int             `json:"return_quantity"`
	Condition      string          `json:"condition,omitempty"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
}

// ReturnResponse is the full return representation returned by the API
type ReturnResponse struct {
	ID                uuid.UUID       `json:"id"`
	ReturnNumber      string          `json:"return_number"`
	OrderID           uuid.UUID       `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	Reason            string          `json:"reason"`
	Description       string          `json:"description,omitempty"`
	Items             []ItemResponse  `json:"items"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	RefundMethod      string          `json:"refund_method,omitempty"`
	Status            string          `json:"status"`
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

// ToReturnResponse maps a domain return request to its API representation
func ToReturnResponse(r *returns.ReturnRequest) ReturnResponse {
	items := make([]ItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ItemResponse{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			ReturnQuantity: item.ReturnQuantity,
			Condition:      item.Condition,
			OriginalPrice:  item.OriginalPrice,
		}
	}

	return ReturnResponse{
		ID:                r.ID,
		ReturnNumber:      r.ReturnNumber,
		OrderID:           r.OrderID,
		OrderNumber:       r.OrderNumber,
		CustomerName:      r.CustomerName,
		CustomerEmail:     r.CustomerEmail,
		Reason:            r.Reason.String(),
		Description:       r.Description,
		Items:             items,
		RefundAmount:      r.RefundAmount,
		RefundMethod:      r.RefundMethod,
		Status:            r.Status.String(),
		AdminNotes:        r.AdminNotes,
		RejectionReason:   r.RejectionReason,
		ApprovedBy:        r.ApprovedBy,
		RejectedBy:        r.RejectedBy,
		PickupScheduledBy: r.PickupScheduledBy,
		PickedUpBy:        r.PickedUpBy,
		ReceivedBy:        r.ReceivedBy,
		RefundedBy:        r.RefundedBy,
		ScheduledDate:     r.ScheduledDate,
		RequestedAt:       r.RequestedAt,
		ApprovedAt:        r.ApprovedAt,
		RejectedAt:        r.RejectedAt,
		PickupScheduledAt: r.PickupScheduledAt,
		PickedUpAt:        r.PickedUpAt,
		ReceivedAt:        r.ReceivedAt,
		RefundedAt:        r.RefundedAt,
	}
}
