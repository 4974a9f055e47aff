package document_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"tender-docs/internal/adapters/repository"
	"tender-docs/internal/adapters/storage"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"tender-docs/internal/core/service/document"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	ctx       context.Context
	uow       *repository.MockUnitOfWork
	docRepo   *repository.MockDocumentRepository
	ownerRepo *repository.MockOwnerRepository
	storage   *storage.MockStorage
}

func newServiceFixture() serviceFixture {
	uow := repository.NewMockUnitOfWork()
	return serviceFixture{
		ctx:       context.Background(),
		uow:       uow,
		docRepo:   uow.GetDocumentRepoMock(),
		ownerRepo: uow.GetOwnerRepoMock(),
		storage:   storage.NewMockStorage(),
	}
}

func (f serviceFixture) service() port.DocumentService {
	return document.NewDocumentService(f.uow, f.storage, testPolicy(), slog.Default())
}

func newUploadRequest(fileName, content string) domain.UploadRequest {
	return domain.UploadRequest{
		Owners: domain.OwnerChain{
			{Kind: domain.OwnerKindGara, ID: uuid.New()},
			{Kind: domain.OwnerKindLotto, ID: uuid.New()},
		},
		FileName:    fileName,
		ContentType: "application/pdf",
		SizeBytes:   int64(len(content)),
		Body:        strings.NewReader(content),
		UploadedBy:  uuid.New(),
	}
}

// pendingDocument matches the record created for req and stores it in created
func pendingDocument(req domain.UploadRequest, created *domain.Document) any {
	return mock.MatchedBy(func(doc domain.Document) bool {
		ok := doc.ID != uuid.Nil &&
			!doc.UploadComplete &&
			doc.FileName == req.FileName &&
			doc.SizeBytes == req.SizeBytes &&
			doc.UploadedBy == req.UploadedBy &&
			doc.Owner() == req.Owners.Owner() &&
			strings.HasPrefix(doc.ObjectKey, "gara/") &&
			strings.HasSuffix(doc.ObjectKey, doc.ID.String()+"-"+"offerta.pdf")
		if ok {
			*created = doc
		}
		return ok
	})
}

func TestDocumentService_Upload_Success(t *testing.T) {
	// Arrange
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()
	var created domain.Document

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, pendingDocument(req, &created)).Return(nil)
	f.storage.On("Put", f.ctx, mock.AnythingOfType("string"), req.Body, req.SizeBytes, req.ContentType).Return(nil)
	f.docRepo.On("MarkUploadComplete", f.ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

	// Act
	id, err := svc.Upload(f.ctx, req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
	f.storage.AssertCalled(t, "Put", f.ctx, created.ObjectKey, req.Body, req.SizeBytes, req.ContentType)
	f.docRepo.AssertCalled(t, "MarkUploadComplete", f.ctx, created.ID)
	f.docRepo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
	f.docRepo.AssertExpectations(t)
	f.ownerRepo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestDocumentService_Upload_StorageFailureRollsBack(t *testing.T) {
	// Arrange
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()
	var created domain.Document
	storageErr := errors.New("connection reset")

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, pendingDocument(req, &created)).Return(nil)
	f.storage.On("Put", f.ctx, mock.AnythingOfType("string"), req.Body, req.SizeBytes, req.ContentType).Return(storageErr)
	// compensation runs on a detached context
	f.docRepo.On("HardDelete", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)
	f.storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	// Act
	id, err := svc.Upload(f.ctx, req)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, storageErr)
	assert.Equal(t, created.ID, id)
	f.docRepo.AssertCalled(t, "HardDelete", mock.Anything, created.ID)
	f.storage.AssertCalled(t, "Delete", mock.Anything, created.ObjectKey)
	f.docRepo.AssertNotCalled(t, "MarkUploadComplete", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RollbackFailureStillReportsUploadFailure(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()
	var created domain.Document

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, pendingDocument(req, &created)).Return(nil)
	f.storage.On("Put", f.ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))
	f.docRepo.On("HardDelete", mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.storage.On("Delete", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	_, err := svc.Upload(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.NotErrorIs(t, err, domain.ErrPersistence)
	f.storage.AssertCalled(t, "Delete", mock.Anything, created.ObjectKey)
}

func TestDocumentService_Upload_CompletionFailureLeavesOrphan(t *testing.T) {
	// Arrange
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()
	var created domain.Document
	dbErr := errors.New("connection refused")

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, pendingDocument(req, &created)).Return(nil)
	f.storage.On("Put", f.ctx, mock.Anything, req.Body, req.SizeBytes, req.ContentType).Return(nil)
	f.docRepo.On("MarkUploadComplete", f.ctx, mock.Anything).Return(dbErr)

	// Act
	id, err := svc.Upload(f.ctx, req)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, created.ID, id)
	// neither the record nor the object is touched: reconciliation resolves it
	f.docRepo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_ValidationFailureDoesNoIO(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("malware.exe", "MZ")

	id, err := svc.Upload(f.ctx, req)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtensionNotAllowed)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, uuid.Nil, id)
	f.docRepo.AssertNotCalled(t, "FindByOwnerAndFileName", mock.Anything, mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_InvalidOwnerChain(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF")
	req.Owners = domain.OwnerChain{
		{Kind: domain.OwnerKindLotto, ID: uuid.New()},
		{Kind: domain.OwnerKindGara, ID: uuid.New()},
	}

	_, err := svc.Upload(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_DuplicateName(t *testing.T) {
	// Arrange
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	existing := &domain.Document{ID: uuid.New(), FileName: req.FileName, Owners: req.Owners, UploadComplete: true}

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, req.Owners.Owner(), req.FileName).Return(existing, nil)

	// Act
	id, err := svc.Upload(f.ctx, req)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "offerta.pdf")
	assert.Equal(t, uuid.Nil, id)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_DuplicateRaceOnCreate(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, mock.Anything).Return(domain.ErrDuplicateName)

	_, err := svc.Upload(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrDuplicateName)
	assert.True(t, domain.IsValidation(err))
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_DuplicateCheckFailure(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, req.Owners.Owner(), req.FileName).Return((*domain.Document)(nil), errors.New("db down"))

	_, err := svc.Upload(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_OwnerNotFound(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(false, nil)

	id, err := svc.Upload(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
	assert.Equal(t, uuid.Nil, id)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_CreateFailure(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	req := newUploadRequest("offerta.pdf", "%PDF-1.7")
	owner := req.Owners.Owner()

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, req.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, mock.Anything).Return(errors.New("disk full"))

	id, err := svc.Upload(f.ctx, req)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, uuid.Nil, id)
	f.storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_UploadBatch_RejectsWholeBatchOverLimits(t *testing.T) {
	f := newServiceFixture()
	svc := f.service()
	reqs := []domain.UploadRequest{
		newUploadRequest("a.pdf", "a"),
		newUploadRequest("b.pdf", "b"),
		newUploadRequest("c.pdf", "c"),
		newUploadRequest("d.pdf", "d"),
	}

	results, err := svc.UploadBatch(f.ctx, reqs)

	assert.ErrorIs(t, err, domain.ErrTooManyFiles)
	assert.Nil(t, results)
	f.docRepo.AssertNotCalled(t, "FindByOwnerAndFileName", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_UploadBatch_IndependentResults(t *testing.T) {
	// Arrange
	f := newServiceFixture()
	svc := f.service()
	good := newUploadRequest("offerta.pdf", "%PDF-1.7")
	bad := newUploadRequest("script.sh", "#!/bin/sh")
	owner := good.Owners.Owner()
	var created domain.Document

	f.docRepo.On("FindByOwnerAndFileName", f.ctx, owner, good.FileName).Return((*domain.Document)(nil), domain.ErrDocumentNotFound)
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil)
	f.ownerRepo.On("Exists", f.ctx, owner).Return(true, nil)
	f.docRepo.On("Create", f.ctx, pendingDocument(good, &created)).Return(nil)
	f.storage.On("Put", f.ctx, mock.Anything, good.Body, good.SizeBytes, good.ContentType).Return(nil)
	f.docRepo.On("MarkUploadComplete", f.ctx, mock.Anything).Return(nil)

	// Act
	results, err := svc.UploadBatch(f.ctx, []domain.UploadRequest{bad, good})

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "script.sh", results[0].FileName)
	assert.ErrorIs(t, results[0].Err, domain.ErrExtensionNotAllowed)
	assert.Equal(t, uuid.Nil, results[0].DocumentID)
	assert.Equal(t, "offerta.pdf", results[1].FileName)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, created.ID, results[1].DocumentID)
}
