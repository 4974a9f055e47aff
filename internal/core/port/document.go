package port

import (
	"context"
	"io"
	"tender-docs/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// DocumentRepository is an interface to define document metadata store interactions
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	MarkUploadComplete(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, tombstone domain.Tombstone) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	FindByOwnerAndFileName(ctx context.Context, owner domain.OwnerRef, fileName string) (*domain.Document, error)
	FindByOwner(ctx context.Context, owner domain.OwnerRef) ([]domain.Document, error)
	FindIncompleteOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]domain.Document, error)
	ClaimIncomplete(ctx context.Context, id uuid.UUID, cutoff time.Time) (*domain.Document, error)
}

// OwnerRepository answers whether a business entity exists
type OwnerRepository interface {
	Exists(ctx context.Context, owner domain.OwnerRef) (bool, error)
}

// ObjectStorage is an interface to define blob store interactions
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stat(ctx context.Context, key string) (*domain.ObjectInfo, error)
}

// DocumentService is an interface to define the document service
type DocumentService interface {
	Upload(ctx context.Context, req domain.UploadRequest) (uuid.UUID, error)
	UploadBatch(ctx context.Context, reqs []domain.UploadRequest) ([]domain.UploadResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByOwner(ctx context.Context, owner domain.OwnerRef) ([]domain.Document, error)
	Download(ctx context.Context, id uuid.UUID) (*domain.DocumentContent, error)
	Delete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner domain.OwnerRef, deletedBy uuid.UUID) (*domain.BulkDeleteReport, error)
	Verify(ctx context.Context, id uuid.UUID) (*domain.IntegrityReport, error)
}
