package document

import (
	"io"
	"mime"
	"net/http"
	"strconv"
)

// DownloadDocumentV1 streams the content of a completed document
func (h *HandlerV1) DownloadDocumentV1(w http.ResponseWriter, r *http.Request) {

	id, err := documentIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	content, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "document_id", id)
		return
	}
	defer content.Body.Close()

	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.FileName}))
	w.Header().Set("Content-Length", strconv.FormatInt(content.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content.Body); err != nil {
		h.logger.Warn("download interrupted", "document_id", id, "error", err)
	}
}
