package document

import (
	"context"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// Delete removes a document.
// Completed documents lose their object (best-effort) and are soft deleted.
// Incomplete ones are hard deleted first, then their object is removed.
func (s *documentService) Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {

	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if doc.UploadComplete {
		return s.deleteCompleted(ctx, doc, deletedBy)
	}
	return s.deleteIncomplete(ctx, doc, deletedBy)
}

func (s *documentService) deleteCompleted(ctx context.Context, doc *domain.Document, deletedBy uuid.UUID) error {
	if delErr := s.storage.Delete(ctx, doc.ObjectKey); delErr != nil {
		s.logger.Warn("failed to delete document object", append(docAttrs(doc), "error", delErr)...)
	}

	tombstone := domain.Tombstone{At: s.now(), By: deletedBy}
	if err := s.uow.DocumentRepo().SoftDelete(ctx, doc.ID, tombstone); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return err
		}
		s.logger.Error("failed to soft delete document", append(docAttrs(doc), "error", err)...)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	s.logger.Info("document deleted", append(docAttrs(doc), "deleted_by", deletedBy)...)
	return nil
}

// deleteIncomplete hard deletes the record while it is still incomplete and
// only then touches the object, so an upload completing meanwhile keeps its blob
func (s *documentService) deleteIncomplete(ctx context.Context, doc *domain.Document, deletedBy uuid.UUID) error {
	err := s.uow.DocumentRepo().HardDelete(ctx, doc.ID)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return s.resolveVanishedIncomplete(ctx, doc, deletedBy)
	case err != nil:
		s.logger.Error("failed to hard delete incomplete document", append(docAttrs(doc), "error", err)...)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.removeObject(ctx, doc)
	s.logger.Info("incomplete document removed", docAttrs(doc)...)
	return nil
}

// resolveVanishedIncomplete handles a record that was no longer incomplete
// when the hard delete ran: either it completed or someone else removed it
func (s *documentService) resolveVanishedIncomplete(ctx context.Context, doc *domain.Document, deletedBy uuid.UUID) error {
	current, err := s.Get(ctx, doc.ID)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		// removed by reconciliation, which also deletes the object
		s.logger.Debug("incomplete document already removed", docAttrs(doc)...)
		return nil
	case err != nil:
		return err
	case current.UploadComplete:
		s.logger.Info("upload completed while being deleted, deleting completed document", docAttrs(current)...)
		return s.deleteCompleted(ctx, current, deletedBy)
	default:
		s.logger.Error("incomplete document could not be hard deleted", docAttrs(current)...)
		return fmt.Errorf("%w: incomplete document %s not deleted", domain.ErrPersistence, doc.ID)
	}
}

// removeObject deletes the object of a record that no longer exists.
// An unknown existence still gets a delete, which is idempotent.
func (s *documentService) removeObject(ctx context.Context, doc *domain.Document) {
	exists, existsErr := s.storage.Exists(ctx, doc.ObjectKey)
	if existsErr != nil {
		s.logger.Warn("could not check object of incomplete document", append(docAttrs(doc), "error", existsErr)...)
	}
	if existsErr == nil && !exists {
		return
	}
	if delErr := s.storage.Delete(ctx, doc.ObjectKey); delErr != nil {
		s.logger.Warn("failed to delete object of incomplete document", append(docAttrs(doc), "error", delErr)...)
	}
}
