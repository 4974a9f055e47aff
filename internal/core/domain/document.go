package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Tombstone marks a soft deleted document
type Tombstone struct {
	At time.Time
	By uuid.UUID
}

// Document represents the metadata of one uploaded file
type Document struct {
	ID             uuid.UUID
	Owners         OwnerChain
	FileName       string
	ObjectKey      string
	SizeBytes      int64
	ContentType    string
	UploadComplete bool
	UploadedBy     uuid.UUID
	UploadedAt     time.Time
	Deletion       *Tombstone
}

// Owner returns the immediate owner of the document
func (d *Document) Owner() OwnerRef {
	return d.Owners.Owner()
}

// IsDeleted reports whether the document is soft deleted
func (d *Document) IsDeleted() bool {
	return d.Deletion != nil
}

// DocumentContent is a downloadable document body
type DocumentContent struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	SizeBytes   int64
}

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key         string
	SizeBytes   int64
	ContentType string
	ETag        string
}

// IntegrityReport is the result of comparing a document with its stored object
type IntegrityReport struct {
	DocumentID     uuid.UUID
	ObjectKey      string
	UploadComplete bool
	ObjectExists   bool
	ExpectedSize   int64
	StoredSize     int64
	Consistent     bool
}

// BulkDeleteReport is the result of deleting every document of an owner
type BulkDeleteReport struct {
	Owner   OwnerRef
	Deleted int
	Failed  []uuid.UUID
}
