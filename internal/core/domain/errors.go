package domain

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound is an error thrown when a document does not exist or is soft deleted
var ErrDocumentNotFound = errors.New("document not found")

// ErrOwnerNotFound is an error thrown when the owner of a document does not exist
var ErrOwnerNotFound = errors.New("owner not found")

// ErrInvalidOwner is an error thrown when an owner chain is malformed
var ErrInvalidOwner = errors.New("invalid owner")

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrPersistence is an error thrown when the metadata store fails
var ErrPersistence = errors.New("persistence error")

// ErrStorage is an error thrown when the object store fails
var ErrStorage = errors.New("storage error")

// ErrObjectNotFound is an error thrown by object storage when a key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ErrUploadFailed is an error thrown when the blob write failed and the upload was rolled back
var ErrUploadFailed = errors.New("upload failed")

// ErrUploadNotComplete is an error thrown when a document is read before its upload completed
var ErrUploadNotComplete = errors.New("upload not complete")

// ErrObjectMissing is an error thrown when a completed document has no object in storage
var ErrObjectMissing = errors.New("object missing")

// ErrReconcileInProgress is an error thrown when a reconciliation is already running
var ErrReconcileInProgress = errors.New("reconciliation already in progress")

// ErrInvalidThreshold is an error thrown when a reconciliation threshold is not positive
var ErrInvalidThreshold = errors.New("invalid threshold")

// Validation errors. They are returned to the caller before any I/O takes place.
var (
	ErrEmptyFile           = errors.New("empty file")
	ErrFileTooLarge        = errors.New("file too large")
	ErrExtensionNotAllowed = errors.New("extension not allowed")
	ErrMimeTypeNotAllowed  = errors.New("mime type not allowed")
	ErrFileNameTooLong     = errors.New("file name too long")
	ErrInvalidFileName     = errors.New("invalid file name")
	ErrDuplicateName       = errors.New("duplicate file name")
	ErrTooManyFiles        = errors.New("too many files")
	ErrBatchTooLarge       = errors.New("batch too large")
)

// ValidationError carries a user facing reason for a rejected file.
// It unwraps to one of the validation sentinels.
type ValidationError struct {
	Err    error
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError with a formatted reason
func NewValidationError(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Err: err, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	return errors.Is(err, ErrDuplicateName)
}
