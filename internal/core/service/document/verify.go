package document

import (
	"context"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// Verify compares a document with its stored object. It never repairs anything.
func (s *documentService) Verify(ctx context.Context, id uuid.UUID) (*domain.IntegrityReport, error) {

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &domain.IntegrityReport{
		DocumentID:     doc.ID,
		ObjectKey:      doc.ObjectKey,
		UploadComplete: doc.UploadComplete,
		ExpectedSize:   doc.SizeBytes,
	}

	info, err := s.storage.Stat(ctx, doc.ObjectKey)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return report, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	report.ObjectExists = true
	report.StoredSize = info.SizeBytes
	report.Consistent = info.SizeBytes == doc.SizeBytes
	if !report.Consistent {
		s.logger.Warn("document size mismatch", append(docAttrs(doc), "expected", doc.SizeBytes, "stored", info.SizeBytes)...)
	}
	return report, nil
}
