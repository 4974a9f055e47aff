package document

import (
	"net/http"
)

// DeleteDocumentV1 deletes a document
func (h *HandlerV1) DeleteDocumentV1(w http.ResponseWriter, r *http.Request) {

	id, err := documentIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deletedBy, err := userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.documentService.Delete(r.Context(), id, deletedBy); err != nil {
		h.writeServiceError(w, err, "document_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
