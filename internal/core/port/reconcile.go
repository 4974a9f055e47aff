package port

import (
	"context"
	"tender-docs/internal/core/domain"
	"time"
)

// ReconcileService resolves incomplete uploads older than a threshold
type ReconcileService interface {
	Reconcile(ctx context.Context, threshold time.Duration) (*domain.ReconcileReport, error)
}

// ReportPublisher publishes reconciliation reports for administrators
type ReportPublisher interface {
	PublishReport(ctx context.Context, report domain.ReconcileReport) error
}
