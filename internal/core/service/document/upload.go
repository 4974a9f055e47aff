package document

import (
	"context"
	"errors"
	"fmt"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"

	"github.com/google/uuid"
)

// Upload attaches a file to its owner.
//
// The metadata record is written first with UploadComplete=false, then the
// blob, then the completion flag. A failed blob write hard deletes the record.
// A failed flip leaves the record incomplete for reconciliation. The document
// id is returned with blob and flip errors so callers can correlate them.
func (s *documentService) Upload(ctx context.Context, req domain.UploadRequest) (uuid.UUID, error) {

	if err := ValidateFile(req.Candidate(), s.policy); err != nil {
		uploadOutcomesTotal.WithLabelValues(outcomeRejected).Inc()
		s.logger.Debug("upload rejected", "file_name", req.FileName, "reason", err.Error())
		return uuid.Nil, err
	}

	if err := req.Owners.Validate(); err != nil {
		uploadOutcomesTotal.WithLabelValues(outcomeRejected).Inc()
		return uuid.Nil, err
	}
	owner := req.Owners.Owner()

	existing, err := s.uow.DocumentRepo().FindByOwnerAndFileName(ctx, owner, req.FileName)
	switch {
	case err == nil && existing != nil:
		uploadOutcomesTotal.WithLabelValues(outcomeDuplicate).Inc()
		return uuid.Nil, duplicateNameError(req.FileName)
	case err != nil && !errors.Is(err, domain.ErrDocumentNotFound):
		uploadOutcomesTotal.WithLabelValues(outcomePersistenceError).Inc()
		s.logger.Error("duplicate name check failed", "owner", owner.String(), "file_name", req.FileName, "error", err)
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	doc := domain.Document{
		ID:          uuid.New(),
		Owners:      req.Owners,
		FileName:    req.FileName,
		SizeBytes:   req.SizeBytes,
		ContentType: req.ContentType,
		UploadedBy:  req.UploadedBy,
		UploadedAt:  s.now(),
	}
	doc.ObjectKey = ObjectKey(doc.Owners, doc.ID, doc.FileName)
	s.logger.Debug("upload state", append(docAttrs(&doc), "state", domain.UploadStateInitiated)...)

	txErr := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		exists, existsErr := uow.OwnerRepo().Exists(ctx, owner)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, owner)
		}
		return uow.DocumentRepo().Create(ctx, doc)
	})
	switch {
	case errors.Is(txErr, domain.ErrOwnerNotFound):
		uploadOutcomesTotal.WithLabelValues(outcomeOwnerNotFound).Inc()
		return uuid.Nil, txErr
	case errors.Is(txErr, domain.ErrDuplicateName):
		// lost the race against a concurrent upload of the same name
		uploadOutcomesTotal.WithLabelValues(outcomeDuplicate).Inc()
		return uuid.Nil, duplicateNameError(req.FileName)
	case txErr != nil:
		uploadOutcomesTotal.WithLabelValues(outcomePersistenceError).Inc()
		s.logger.Error("failed to create document metadata", append(docAttrs(&doc), "error", txErr)...)
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrPersistence, txErr)
	}
	s.logger.Debug("upload state", append(docAttrs(&doc), "state", domain.UploadStateMetadataPending)...)

	if putErr := s.storage.Put(ctx, doc.ObjectKey, req.Body, doc.SizeBytes, doc.ContentType); putErr != nil {
		s.logger.Error("failed to store document object", append(docAttrs(&doc), "error", putErr)...)
		s.rollback(ctx, &doc)
		uploadOutcomesTotal.WithLabelValues(outcomeRolledBack).Inc()
		return doc.ID, fmt.Errorf("%w: %w: %w", domain.ErrUploadFailed, domain.ErrStorage, putErr)
	}

	if flipErr := s.uow.DocumentRepo().MarkUploadComplete(ctx, doc.ID); flipErr != nil {
		// The object is safe; the record stays incomplete until reconciliation resolves it.
		s.logger.Error("document stored but completion flag not saved",
			append(docAttrs(&doc), "state", domain.UploadStateOrphanIncomplete, "error", flipErr)...)
		uploadOutcomesTotal.WithLabelValues(outcomeOrphanIncomplete).Inc()
		return doc.ID, fmt.Errorf("%w: %w", domain.ErrPersistence, flipErr)
	}

	uploadOutcomesTotal.WithLabelValues(outcomeCompleted).Inc()
	s.logger.Info("document uploaded", append(docAttrs(&doc), "size_bytes", doc.SizeBytes)...)
	return doc.ID, nil
}

// rollback removes the pending record of a failed blob write, then any
// object the failed write may still have left behind
func (s *documentService) rollback(ctx context.Context, doc *domain.Document) {
	cctx, cancel := detached(ctx)
	defer cancel()

	if err := s.uow.DocumentRepo().HardDelete(cctx, doc.ID); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
		s.logger.Warn("rollback of pending document failed, left for reconciliation",
			append(docAttrs(doc), "error", err)...)
	} else {
		s.logger.Debug("upload state", append(docAttrs(doc), "state", domain.UploadStateRolledBack)...)
	}

	if err := s.storage.Delete(cctx, doc.ObjectKey); err != nil {
		s.logger.Warn("failed to remove object of rolled back upload", append(docAttrs(doc), "error", err)...)
	}
}

func duplicateNameError(fileName string) error {
	return domain.NewValidationError(domain.ErrDuplicateName,
		"a document named %q already exists for this owner", fileName)
}
