package document

import (
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"tender-docs/internal/core/domain"
	"unicode/utf8"
)

// MaxFileNameLength is the longest accepted file name, in characters
const MaxFileNameLength = 255

// invalidFileNameChars are rejected on every platform documents may be downloaded to
const invalidFileNameChars = `<>:"/\|?*`

// ValidateFile checks a candidate file against the policy.
// Checks run in order and stop at the first failure; the returned
// *domain.ValidationError carries the reason shown to the user.
func ValidateFile(file domain.FileCandidate, policy domain.UploadPolicy) error {
	if file.SizeBytes <= 0 {
		return domain.NewValidationError(domain.ErrEmptyFile, "file %q is empty", file.FileName)
	}

	if policy.MaxFileSizeBytes > 0 && file.SizeBytes > policy.MaxFileSizeBytes {
		return domain.NewValidationError(domain.ErrFileTooLarge,
			"file %q is %d bytes, the maximum allowed size is %d bytes (%s)",
			file.FileName, file.SizeBytes, policy.MaxFileSizeBytes, formatMB(policy.MaxFileSizeBytes))
	}

	ext := strings.ToLower(filepath.Ext(file.FileName))
	if ext == "" || ext == "." {
		return domain.NewValidationError(domain.ErrExtensionNotAllowed,
			"file %q has no extension (allowed: %s)", file.FileName, allowedList(policy))
	}
	if !policy.AllowsExtension(ext) {
		return domain.NewValidationError(domain.ErrExtensionNotAllowed,
			"extension %s is not allowed (allowed: %s)", ext, allowedList(policy))
	}

	if contentType := strings.TrimSpace(file.ContentType); contentType != "" && policy.RestrictsMimeTypes() {
		mimeType := extractMimeType(contentType)
		if mimeType == "" || !policy.AllowsMimeType(mimeType) {
			return domain.NewValidationError(domain.ErrMimeTypeNotAllowed,
				"content type %s is not allowed", contentType)
		}
	}

	if utf8.RuneCountInString(file.FileName) > MaxFileNameLength {
		return domain.NewValidationError(domain.ErrFileNameTooLong,
			"file name is longer than %d characters", MaxFileNameLength)
	}

	if !validFileName(file.FileName) {
		return domain.NewValidationError(domain.ErrInvalidFileName,
			"file name %q contains invalid characters", file.FileName)
	}

	return nil
}

// ValidateBatch checks the batch level limits of the policy.
// Each file is still validated on its own when uploaded.
func ValidateBatch(files []domain.FileCandidate, policy domain.UploadPolicy) error {
	if len(files) == 0 {
		return domain.NewValidationError(domain.ErrEmptyFile, "no files provided")
	}

	if policy.MaxFilesPerUpload > 0 && len(files) > policy.MaxFilesPerUpload {
		return domain.NewValidationError(domain.ErrTooManyFiles,
			"%d files submitted, at most %d files can be uploaded at once", len(files), policy.MaxFilesPerUpload)
	}

	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	if policy.MaxTotalBatchSizeBytes > 0 && total > policy.MaxTotalBatchSizeBytes {
		return domain.NewValidationError(domain.ErrBatchTooLarge,
			"files total %d bytes, the maximum for one upload is %d bytes (%s)",
			total, policy.MaxTotalBatchSizeBytes, formatMB(policy.MaxTotalBatchSizeBytes))
	}

	return nil
}

func validFileName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return false
	}
	if !utf8.ValidString(name) {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(invalidFileNameChars, r) {
			return false
		}
	}
	return true
}

func extractMimeType(contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mimeType
}

func allowedList(policy domain.UploadPolicy) string {
	exts := policy.AllowedExtensions()
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%.1f MB", float64(bytes)/(1<<20))
}
