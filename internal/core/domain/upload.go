package domain

import (
	"io"
	"strings"

	"github.com/google/uuid"
)

// UploadPolicy is the immutable set of rules an uploaded file must satisfy.
// Zero limits mean unlimited. The extension whitelist is mandatory: an empty
// one rejects every file. An empty mime type whitelist skips the mime check.
type UploadPolicy struct {
	MaxFileSizeBytes       int64
	MaxFilesPerUpload      int
	MaxTotalBatchSizeBytes int64
	allowedExtensions      map[string]struct{}
	allowedMimeTypes       map[string]struct{}
}

// NewUploadPolicy builds a policy. Extensions are matched case-insensitively
// with or without the leading dot; mime types are matched case-insensitively.
func NewUploadPolicy(maxFileSize int64, maxFiles int, maxBatchSize int64, extensions, mimeTypes []string) UploadPolicy {
	p := UploadPolicy{
		MaxFileSizeBytes:       maxFileSize,
		MaxFilesPerUpload:      maxFiles,
		MaxTotalBatchSizeBytes: maxBatchSize,
		allowedExtensions:      make(map[string]struct{}, len(extensions)),
		allowedMimeTypes:       make(map[string]struct{}, len(mimeTypes)),
	}
	for _, ext := range extensions {
		ext = normalizeExtension(ext)
		if ext != "" {
			p.allowedExtensions[ext] = struct{}{}
		}
	}
	for _, mt := range mimeTypes {
		mt = toLowerTrim(mt)
		if mt != "" {
			p.allowedMimeTypes[mt] = struct{}{}
		}
	}
	return p
}

// AllowsExtension reports whether ext (".pdf" or "pdf") is allowed
func (p UploadPolicy) AllowsExtension(ext string) bool {
	_, ok := p.allowedExtensions[normalizeExtension(ext)]
	return ok
}

// RestrictsMimeTypes reports whether the policy has a mime type whitelist
func (p UploadPolicy) RestrictsMimeTypes() bool {
	return len(p.allowedMimeTypes) > 0
}

// AllowsMimeType reports whether the mime type is whitelisted
func (p UploadPolicy) AllowsMimeType(mimeType string) bool {
	_, ok := p.allowedMimeTypes[toLowerTrim(mimeType)]
	return ok
}

// AllowedExtensions returns the allowed extensions
func (p UploadPolicy) AllowedExtensions() []string {
	exts := make([]string, 0, len(p.allowedExtensions))
	for ext := range p.allowedExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// FileCandidate is a file submitted for upload, before any I/O
type FileCandidate struct {
	FileName    string
	ContentType string
	SizeBytes   int64
}

// UploadRequest is a file to attach to an owner
type UploadRequest struct {
	Owners      OwnerChain
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
	UploadedBy  uuid.UUID
}

// Candidate returns the validation view of the request
func (r UploadRequest) Candidate() FileCandidate {
	return FileCandidate{FileName: r.FileName, ContentType: r.ContentType, SizeBytes: r.SizeBytes}
}

// UploadResult is the outcome of one file of a batch upload
type UploadResult struct {
	FileName   string
	DocumentID uuid.UUID
	Err        error
}

// UploadState is a step of the upload protocol
type UploadState string

const (
	UploadStateInitiated        UploadState = "initiated"
	UploadStateMetadataPending  UploadState = "metadata_pending"
	UploadStateCompleted        UploadState = "completed"
	UploadStateRolledBack       UploadState = "rolled_back"
	UploadStateOrphanIncomplete UploadState = "orphan_incomplete"
)

func normalizeExtension(ext string) string {
	ext = toLowerTrim(ext)
	if ext == "" {
		return ""
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	return ext
}

func toLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
