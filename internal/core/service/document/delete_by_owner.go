package document

import (
	"context"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// DeleteByOwner deletes every document of an owner, continuing past failures
func (s *documentService) DeleteByOwner(ctx context.Context, owner domain.OwnerRef, deletedBy uuid.UUID) (*domain.BulkDeleteReport, error) {

	docs, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	report := &domain.BulkDeleteReport{Owner: owner}
	for _, doc := range docs {
		if err := s.Delete(ctx, doc.ID, deletedBy); err != nil {
			s.logger.Warn("bulk delete: document not deleted", "document_id", doc.ID, "owner", owner.String(), "error", err)
			report.Failed = append(report.Failed, doc.ID)
			continue
		}
		report.Deleted++
	}

	s.logger.Info("bulk delete completed", "owner", owner.String(), "deleted", report.Deleted, "failed", len(report.Failed))
	return report, nil
}
