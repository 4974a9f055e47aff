package reconcile

import (
	"context"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/google/uuid"
)

// Reconcile removes uploads left incomplete for longer than threshold,
// together with any object they reference. Completed documents are never
// touched: each record is claimed under a row lock that rechecks the
// completion flag, so an upload finishing concurrently is skipped.
func (s *reconcileService) Reconcile(ctx context.Context, threshold time.Duration) (*domain.ReconcileReport, error) {

	if threshold <= 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidThreshold, threshold)
	}

	if !s.begin() {
		s.logger.Warn("reconciliation already running, skipped")
		return nil, domain.ErrReconcileInProgress
	}
	defer s.end()

	report := domain.ReconcileReport{
		StartedAt: s.now(),
		Threshold: threshold,
		Failed:    []uuid.UUID{},
	}
	report.Cutoff = report.StartedAt.Add(-threshold)
	s.logger.Info("reconciliation started", "threshold", threshold.String(), "cutoff", report.Cutoff)

	reconcileRunsTotal.Inc()
	defer func() {
		reconcileDurationSeconds.Observe(time.Since(report.StartedAt).Seconds())
	}()

	docs, err := s.uow.DocumentRepo().FindIncompleteOlderThan(ctx, report.Cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("failed to list incomplete documents", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	report.Found = len(docs)

	for _, doc := range docs {
		if ctx.Err() != nil {
			s.logger.Warn("reconciliation interrupted", "remaining", report.Found-report.Processed-report.Skipped-len(report.Failed))
			break
		}

		removed, err := s.removeIncomplete(ctx, doc.ID, report.Cutoff)
		switch {
		case err != nil:
			reconcileFailuresTotal.Inc()
			report.Failed = append(report.Failed, doc.ID)
			s.logger.Error("failed to reconcile document",
				"document_id", doc.ID, "object_key", doc.ObjectKey, "error", err)
		case removed:
			reconcileProcessedTotal.Inc()
			report.Processed++
			s.logger.Info("incomplete document removed",
				"document_id", doc.ID, "object_key", doc.ObjectKey, "uploaded_at", doc.UploadedAt)
		default:
			report.Skipped++
			s.logger.Debug("document completed or locked meanwhile, skipped", "document_id", doc.ID)
		}
	}

	report.CompletedAt = s.now()
	s.logger.Info("reconciliation completed",
		"found", report.Found,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
		"duration", report.CompletedAt.Sub(report.StartedAt).String(),
	)

	s.publish(ctx, report)
	return &report, nil
}

// removeIncomplete deletes the object then the record of one incomplete
// upload in a single transaction. It reports false when the record was
// completed, removed or locked by someone else since it was listed.
func (s *reconcileService) removeIncomplete(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, error) {
	removed := false

	err := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		doc, err := uow.DocumentRepo().ClaimIncomplete(ctx, id, cutoff)
		if err != nil {
			return err
		}
		if doc == nil || doc.UploadComplete {
			return nil
		}

		if err := s.storage.Delete(ctx, doc.ObjectKey); err != nil && !errors.Is(err, domain.ErrObjectNotFound) {
			return fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}

		if err := uow.DocumentRepo().HardDelete(ctx, doc.ID); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *reconcileService) publish(ctx context.Context, report domain.ReconcileReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReport(ctx, report); err != nil {
		s.logger.Warn("failed to publish reconciliation report", "error", err)
	}
}
