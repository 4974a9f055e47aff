package document

import (
	"net/http"
)

// GetDocumentV1 returns the metadata of a document
func (h *HandlerV1) GetDocumentV1(w http.ResponseWriter, r *http.Request) {

	id, err := documentIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.documentService.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "document_id", id)
		return
	}
	if doc == nil {
		h.logger.Error("response has nil values", "document_id", id)
		http.Error(w, retryMessage, http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusOK, toDocumentResponse(*doc))
}
