package document

import (
	"net/http"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// V1ListDocumentsResponse lists the documents of an owner
type V1ListDocumentsResponse struct {
	Owner     domain.OwnerRef      `json:"owner"`
	Documents []V1DocumentResponse `json:"documents"`
}

// V1BulkDeleteResponse is the outcome of deleting every document of an owner
type V1BulkDeleteResponse struct {
	Owner   domain.OwnerRef `json:"owner"`
	Deleted int             `json:"deleted"`
	Failed  []uuid.UUID     `json:"failed"`
}

// ListOwnerDocumentsV1 lists the documents attached to an owner
func (h *HandlerV1) ListOwnerDocumentsV1(w http.ResponseWriter, r *http.Request) {

	owner, err := ownerParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	docs, err := h.documentService.ListByOwner(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err, "owner", owner.String())
		return
	}

	resp := V1ListDocumentsResponse{Owner: owner, Documents: make([]V1DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(doc))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// DeleteOwnerDocumentsV1 deletes every document attached to an owner
func (h *HandlerV1) DeleteOwnerDocumentsV1(w http.ResponseWriter, r *http.Request) {

	owner, err := ownerParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deletedBy, err := userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.documentService.DeleteByOwner(r.Context(), owner, deletedBy)
	if err != nil {
		h.writeServiceError(w, err, "owner", owner.String())
		return
	}

	failed := report.Failed
	if failed == nil {
		failed = []uuid.UUID{}
	}
	h.writeJSON(w, http.StatusOK, V1BulkDeleteResponse{Owner: report.Owner, Deleted: report.Deleted, Failed: failed})
}
