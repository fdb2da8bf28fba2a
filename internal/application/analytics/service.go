package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/analytics"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/order"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/returns"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/stock"
)

// Service assembles dashboard snapshots from the repositories and hands
// them to the pure report builder. Reads take no locks, so a dashboard
// under load sees slightly stale but internally consistent data.
type Service struct {
	orders  order.Repository
	returns returns.Repository
	stock   stock.Repository
	views   catalog.ViewCounter
	opts    analytics.Options
	logger  *zap.Logger
}

// NewService creates a new analytics service. views may be nil when no view
// tracking backend is configured; the most-viewed list is then empty.
func NewService(
	orders order.Repository,
	returnsRepo returns.Repository,
	stockRepo stock.Repository,
	views catalog.ViewCounter,
	opts analytics.Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:  orders,
		returns: returnsRepo,
		stock:   stockRepo,
		views:   views,
		opts:    opts,
		logger:  logger.Named("analytics-service"),
	}
}

// Dashboard computes the full business report
func (s *Service) Dashboard(ctx context.Context) (*analytics.Report, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := analytics.BuildReport(snap, s.opts)

	s.logger.Debug("dashboard computed",
		zap.Int("orders", report.TotalOrders),
		zap.String("total_revenue", report.TotalRevenue.StringFixed(2)),
	)
	return &report, nil
}

func (s *Service) snapshot(ctx context.Context) (analytics.Snapshot, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	allReturns, err := s.returns.List(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	levels, err := s.stock.List(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}

	var viewCounts map[uuid.UUID]int64
	if s.views != nil {
		viewCounts, err = s.views.ViewCounts(ctx)
		if err != nil {
			// view counters are best-effort telemetry, not books of record
			s.logger.Warn("failed to load view counts", zap.Error(err))
			viewCounts = nil
		}
	}

	return analytics.Snapshot{
		Orders:      orders,
		Returns:     allReturns,
		StockLevels: levels,
		ViewCounts:  viewCounts,
		Now:         time.Now(),
	}, nil
}
