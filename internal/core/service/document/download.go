package document

import (
	"context"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// Download returns the content of a completed document
func (s *documentService) Download(ctx context.Context, id uuid.UUID) (*domain.DocumentContent, error) {

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !doc.UploadComplete {
		return nil, domain.ErrUploadNotComplete
	}

	body, err := s.storage.Get(ctx, doc.ObjectKey)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			s.logger.Error("completed document has no stored object", docAttrs(doc)...)
			return nil, fmt.Errorf("%w: %s", domain.ErrObjectMissing, doc.ObjectKey)
		}
		s.logger.Error("failed to read document object", append(docAttrs(doc), "error", err)...)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	return &domain.DocumentContent{
		Body:        body,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
	}, nil
}
