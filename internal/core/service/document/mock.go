package document

import (
	"context"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDocumentService is a mock implementation of DocumentService
type MockDocumentService struct {
	mock.Mock
}

// NewMockDocumentService creates a new MockDocumentService
func NewMockDocumentService() *MockDocumentService {
	return &MockDocumentService{}
}

func (m *MockDocumentService) Upload(ctx context.Context, req domain.UploadRequest) (uuid.UUID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockDocumentService) UploadBatch(ctx context.Context, reqs []domain.UploadRequest) ([]domain.UploadResult, error) {
	args := m.Called(ctx, reqs)
	return args.Get(0).([]domain.UploadResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]domain.Document, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, id uuid.UUID) (*domain.DocumentContent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.DocumentContent), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	args := m.Called(ctx, id, deletedBy)
	return args.Error(0)
}

func (m *MockDocumentService) DeleteByOwner(ctx context.Context, owner domain.OwnerRef, deletedBy uuid.UUID) (*domain.BulkDeleteReport, error) {
	args := m.Called(ctx, owner, deletedBy)
	return args.Get(0).(*domain.BulkDeleteReport), args.Error(1)
}

func (m *MockDocumentService) Verify(ctx context.Context, id uuid.UUID) (*domain.IntegrityReport, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.IntegrityReport), args.Error(1)
}
