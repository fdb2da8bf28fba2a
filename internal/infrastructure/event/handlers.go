package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/shared"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

// AuditLogHandler is a wildcard handler that writes every domain event to
// the structured log, giving an audit trail across all aggregates.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice: this handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// LowStockAlertHandler warns when a product's available quantity drops
// below the configured threshold.
type LowStockAlertHandler struct {
	logger *zap.Logger
}

// NewLowStockAlertHandler creates a new low stock alert handler
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger.Named("stock-alert")}
}

// Handle logs a warning for the product that fell below threshold
func (h *LowStockAlertHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	alert, ok := event.(*stock.StockBelowThresholdEvent)
	if !ok {
		return nil
	}
	h.logger.Warn("stock below threshold",
		zap.String("product_id", alert.ProductID.String()),
		zap.String("product_name", alert.ProductName),
		zap.Int("available", alert.Available),
		zap.Int("threshold", alert.Threshold),
	)
	return nil
}

// EventTypes returns the stock threshold event type
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{stock.EventTypeStockBelowThreshold}
}

var (
	_ shared.EventHandler = (*AuditLogHandler)(nil)
	_ shared.EventHandler = (*LowStockAlertHandler)(nil)
)
