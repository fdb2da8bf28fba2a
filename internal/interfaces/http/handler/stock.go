package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/stock"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stock *stockapp.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock *stockapp.Service) *StockHandler {
	return &StockHandler{stock: stock}
}

// Create seeds a ledger record for a product
func (h *StockHandler) Create(c *gin.Context) {
	var req stockapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stock.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns a snapshot of all ledger records
func (h *StockHandler) List(c *gin.Context) {
	resp, err := h.stock.CurrentLevels(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns the ledger record for a product
func (h *StockHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	resp, err := h.stock.Get(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Restock adds inbound units to a product's ledger record
func (h *StockHandler) Restock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req stockapp.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.stock.Restock(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all stock ledger routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("", h.Create)
		stock.GET("", h.List)
		stock.GET("/:product_id", h.Get)
		stock.POST("/:product_id/restock", h.Restock)
	}
}
