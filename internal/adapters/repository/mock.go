package repository

import (
	"context"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{}
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) MarkUploadComplete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id uuid.UUID, tombstone domain.Tombstone) error {
	args := m.Called(ctx, id, tombstone)
	return args.Error(0)
}

func (m *MockDocumentRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByOwnerAndFileName(ctx context.Context, owner domain.OwnerRef, fileName string) (*domain.Document, error) {
	args := m.Called(ctx, owner, fileName)
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByOwner(ctx context.Context, owner domain.OwnerRef) ([]domain.Document, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindIncompleteOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.Document, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ClaimIncomplete(ctx context.Context, id uuid.UUID, cutoff time.Time) (*domain.Document, error) {
	args := m.Called(ctx, id, cutoff)
	return args.Get(0).(*domain.Document), args.Error(1)
}

type MockOwnerRepository struct {
	mock.Mock
}

func NewMockOwnerRepository() *MockOwnerRepository {
	return &MockOwnerRepository{}
}

func (m *MockOwnerRepository) Exists(ctx context.Context, owner domain.OwnerRef) (bool, error) {
	args := m.Called(ctx, owner)
	return args.Bool(0), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	documentRepo *MockDocumentRepository
	ownerRepo    *MockOwnerRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		documentRepo: &MockDocumentRepository{},
		ownerRepo:    &MockOwnerRepository{},
	}
}

func (m *MockUnitOfWork) DocumentRepo() port.DocumentRepository {
	return m.documentRepo
}

func (m *MockUnitOfWork) OwnerRepo() port.OwnerRepository {
	return m.ownerRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetDocumentRepoMock() *MockDocumentRepository {
	return m.documentRepo
}

func (m *MockUnitOfWork) GetOwnerRepoMock() *MockOwnerRepository {
	return m.ownerRepo
}
