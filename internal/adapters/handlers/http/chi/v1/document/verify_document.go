package document

import (
	"net/http"

	"github.com/google/uuid"
)

// V1IntegrityResponse compares a document with its stored object
type V1IntegrityResponse struct {
	DocumentID     uuid.UUID `json:"document_id"`
	ObjectKey      string    `json:"object_key"`
	UploadComplete bool      `json:"upload_complete"`
	ObjectExists   bool      `json:"object_exists"`
	ExpectedSize   int64     `json:"expected_size"`
	StoredSize     int64     `json:"stored_size"`
	Consistent     bool      `json:"consistent"`
}

// VerifyDocumentV1 reports whether a document and its object agree
func (h *HandlerV1) VerifyDocumentV1(w http.ResponseWriter, r *http.Request) {

	id, err := documentIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.documentService.Verify(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "document_id", id)
		return
	}

	h.writeJSON(w, http.StatusOK, V1IntegrityResponse{
		DocumentID:     report.DocumentID,
		ObjectKey:      report.ObjectKey,
		UploadComplete: report.UploadComplete,
		ObjectExists:   report.ObjectExists,
		ExpectedSize:   report.ExpectedSize,
		StoredSize:     report.StoredSize,
		Consistent:     report.Consistent,
	})
}
