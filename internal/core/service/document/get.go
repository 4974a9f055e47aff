package document

import (
	"context"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// Get returns the metadata of a non deleted document
func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.uow.DocumentRepo().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, err
		}
		s.logger.Error("failed to find document", "document_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return doc, nil
}

// ListByOwner returns the non deleted documents of an owner
func (s *documentService) ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]domain.Document, error) {
	if err := (domain.OwnerChain{owner}).Validate(); err != nil {
		return nil, err
	}
	docs, err := s.uow.DocumentRepo().FindByOwner(ctx, owner)
	if err != nil {
		s.logger.Error("failed to list documents", "owner", owner.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return docs, nil
}
