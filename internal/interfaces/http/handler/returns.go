package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	returnsapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/returns"
)

// ReturnHandler handles return workflow API endpoints
type ReturnHandler struct {
	BaseHandler
	returns *returnsapp.Service
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns *returnsapp.Service) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// Create files a return against a delivered order
func (h *ReturnHandler) Create(c *gin.Context) {
	var req returnsapp.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.returns.RequestReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a return request by ID
func (h *ReturnHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	resp, err := h.returns.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns all return requests
func (h *ReturnHandler) List(c *gin.Context) {
	if orderID := c.Query("order_id"); orderID != "" {
		id, err := uuid.Parse(orderID)
		if err != nil {
			h.BadRequest(c, "Invalid order ID format")
			return
		}
		resp, err := h.returns.ListByOrder(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, resp)
		return
	}

	resp, err := h.returns.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve approves a pending return
func (h *ReturnHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.returns.Approve(c.Request.Context(), id, getActorID(c), req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject rejects a pending return with a reason
func (h *ReturnHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.returns.Reject(c.Request.Context(), id, getActorID(c), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SchedulePickup records the carrier pickup date
func (h *ReturnHandler) SchedulePickup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.SchedulePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.returns.SchedulePickup(c.Request.Context(), id, req.Date, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkPickedUp records that the carrier collected the items
func (h *ReturnHandler) MarkPickedUp(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	resp, err := h.returns.MarkPickedUp(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkReceived records warehouse receipt of the returned items
func (h *ReturnHandler) MarkReceived(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	resp, err := h.returns.MarkReceived(c.Request.Context(), id, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ProcessRefund completes a received return
func (h *ReturnHandler) ProcessRefund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.returns.ProcessRefund(c.Request.Context(), id, getActorID(c), req.Method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all return workflow routes
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/returns")
	{
		returns.POST("", h.Create)
		returns.GET("", h.List)
		returns.GET("/:id", h.Get)
		returns.POST("/:id/approve", h.Approve)
		returns.POST("/:id/reject", h.Reject)
		returns.POST("/:id/schedule-pickup", h.SchedulePickup)
		returns.POST("/:id/picked-up", h.MarkPickedUp)
		returns.POST("/:id/received", h.MarkReceived)
		returns.POST("/:id/refund", h.ProcessRefund)
	}
}
