package reconcile

import (
	"log/slog"
	"sync"
	"tender-docs/internal/core/port"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBatchSize caps the records resolved by one run
const DefaultBatchSize = 500

var (
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docs_reconcile_runs_total",
		Help: "Reconciliation runs",
	})

	reconcileProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docs_reconcile_processed_total",
		Help: "Incomplete uploads removed by reconciliation",
	})

	reconcileFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docs_reconcile_failures_total",
		Help: "Incomplete uploads reconciliation failed to remove",
	})

	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docs_reconcile_duration_seconds",
		Help:    "Reconciliation run duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})
)

type reconcileService struct {
	uow       port.UnitOfWork
	storage   port.ObjectStorage
	publisher port.ReportPublisher
	batchSize int
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	inProcess bool
}

// NewReconcileService creates a new reconciliation service.
// publisher may be nil, in which case reports are only logged.
func NewReconcileService(uow port.UnitOfWork, storage port.ObjectStorage, publisher port.ReportPublisher, batchSize int, logger *slog.Logger) port.ReconcileService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &reconcileService{
		uow:       uow,
		storage:   storage,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger.With(slog.String("component", "reconcile")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *reconcileService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inProcess {
		return false
	}
	s.inProcess = true
	return true
}

func (s *reconcileService) end() {
	s.mu.Lock()
	s.inProcess = false
	s.mu.Unlock()
}
