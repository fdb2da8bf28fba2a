package handler

import (
	"github.com/gin-gonic/gin"

	analyticsapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/analytics"
)

// AnalyticsHandler handles business dashboard API endpoints
type AnalyticsHandler struct {
	BaseHandler
	analytics *analyticsapp.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics *analyticsapp.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard returns the full business report
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	report, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RegisterRoutes registers all analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/dashboard", h.Dashboard)
	}
}
