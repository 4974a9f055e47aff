package document

import (
	"encoding/json"
	"net/http"
	"tender-docs/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// V1DocumentResponse is the metadata of a document
type V1DocumentResponse struct {
	ID             uuid.UUID         `json:"id"`
	Owners         []domain.OwnerRef `json:"owners"`
	FileName       string            `json:"file_name"`
	SizeBytes      int64             `json:"size_bytes"`
	ContentType    string            `json:"content_type"`
	UploadComplete bool              `json:"upload_complete"`
	UploadedBy     uuid.UUID         `json:"uploaded_by"`
	UploadedAt     time.Time         `json:"uploaded_at"`
}

func toDocumentResponse(doc domain.Document) V1DocumentResponse {
	return V1DocumentResponse{
		ID:             doc.ID,
		Owners:         doc.Owners,
		FileName:       doc.FileName,
		SizeBytes:      doc.SizeBytes,
		ContentType:    doc.ContentType,
		UploadComplete: doc.UploadComplete,
		UploadedBy:     doc.UploadedBy,
		UploadedAt:     doc.UploadedAt,
	}
}

func (h *HandlerV1) writeJSON(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
