package handler

import (
	"github.com/gin-gonic/gin"

	promoapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/promo"
)

// PromoHandler handles promo code registry API endpoints
type PromoHandler struct {
	BaseHandler
	promos *promoapp.Service
}

// NewPromoHandler creates a new PromoHandler
func NewPromoHandler(promos *promoapp.Service) *PromoHandler {
	return &PromoHandler{promos: promos}
}

// Create registers a new coupon
func (h *PromoHandler) Create(c *gin.Context) {
	var req promoapp.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.promos.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns all coupons
func (h *PromoHandler) List(c *gin.Context) {
	resp, err := h.promos.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns a coupon by code
func (h *PromoHandler) Get(c *gin.Context) {
	resp, err := h.promos.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Validate checks a code against a prospective order without redeeming it
func (h *PromoHandler) Validate(c *gin.Context) {
	var req promoapp.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.promos.Validate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate makes a coupon redeemable again
func (h *PromoHandler) Activate(c *gin.Context) {
	resp, err := h.promos.Activate(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate pulls a coupon without deleting its usage history
func (h *PromoHandler) Deactivate(c *gin.Context) {
	resp, err := h.promos.Deactivate(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a coupon
func (h *PromoHandler) Delete(c *gin.Context) {
	if err := h.promos.Delete(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all promo code routes
func (h *PromoHandler) RegisterRoutes(rg *gin.RouterGroup) {
	promos := rg.Group("/promos")
	{
		promos.POST("", h.Create)
		promos.GET("", h.List)
		promos.POST("/validate", h.Validate)
		promos.GET("/:code", h.Get)
		promos.POST("/:code/activate", h.Activate)
		promos.POST("/:code/deactivate", h.Deactivate)
		promos.DELETE("/:code", h.Delete)
	}
}
