package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
)

// CreateOrderLine is one requested line at checkout
type CreateOrderLine struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the checkout payload
type CreateOrderRequest struct {
	Customer        CustomerRequest   `json:"customer" binding:"required"`
	ShippingAddress AddressRequest    `json:"shipping_address"`
	Lines           []CreateOrderLine `json:"lines" binding:"required,min=1,dive"`
	PaymentMethod   string            `json:"payment_method" binding:"required"`
	CouponCode      string            `json:"coupon_code"`
}

// CustomerRequest identifies the buyer
type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// AddressRequest is the shipping address payload
type AddressRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// TransitionRequest is the admin status update payload
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ItemResponse is one order line in API responses
type ItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// StatusChangeResponse is one history entry in API responses
type StatusChangeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Notes     string    `json:"notes,omitempty"`
}

// OrderResponse is the full order representation returned by the API
type OrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	Customer        order.Customer         `json:"customer"`
	ShippingAddress order.Address          `json:"shipping_address"`
	Items           []ItemResponse         `json:"items"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	Discount        decimal.Decimal        `json:"discount"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
	Tax             decimal.Decimal        `json:"tax"`
	ShippingCost    decimal.Decimal        `json:"shipping_cost"`
	Total           decimal.Decimal        `json:"total"`
	PaymentMethod   string                 `json:"payment_method"`
	PaymentStatus   string                 `json:"payment_status"`
	Status          string                 `json:"status"`
	NextStatuses    []string               `json:"next_statuses"`
	StatusHistory   []StatusChangeResponse `json:"status_history"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ToOrderResponse maps a domain order to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		}
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

	next := order.NextPossibleStatuses(o.Status)
	nextStatuses := make([]string, len(next))
	for i, s := range next {
		nextStatuses[i] = s.String()
	}

	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Customer:        o.Customer,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		CouponCode:      o.CouponCode,
		Tax:             o.Tax,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Status:          o.Status.String(),
		NextStatuses:    nextStatuses,
		StatusHistory:   history,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
