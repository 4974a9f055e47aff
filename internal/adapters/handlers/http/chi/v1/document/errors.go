package document

import (
	"errors"
	"fmt"
	"net/http"
	"tender-docs/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const retryMessage = "operation failed, retry later"

// writeServiceError answers with the status matching err.
// Infrastructure failures are logged with attrs and hidden behind a generic message.
func (h *HandlerV1) writeServiceError(w http.ResponseWriter, err error, attrs ...any) {
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		http.Error(w, err.Error(), http.StatusConflict)
	case domain.IsValidation(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInvalidOwner):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrOwnerNotFound):
		http.Error(w, "owner not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrDocumentNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUploadNotComplete):
		http.Error(w, "upload not complete", http.StatusConflict)
	case errors.Is(err, domain.ErrObjectMissing):
		h.logger.Error("document content missing", append(attrs, "error", err)...)
		http.Error(w, "document content unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("document operation failed", append(attrs, "error", err)...)
		http.Error(w, retryMessage, http.StatusServiceUnavailable)
	}
}

func documentIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "documentID")
	if raw == "" {
		return uuid.Nil, errors.New("document id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid document id: %w", err)
	}
	return id, nil
}

func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s header is required", UserIDHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s header: %w", UserIDHeader, err)
	}
	return id, nil
}

func ownerParam(r *http.Request) (domain.OwnerRef, error) {
	kind, err := domain.ParseOwnerKind(chi.URLParam(r, "ownerKind"))
	if err != nil {
		return domain.OwnerRef{}, err
	}
	id, err := uuid.Parse(chi.URLParam(r, "ownerID"))
	if err != nil {
		return domain.OwnerRef{}, fmt.Errorf("%w: invalid owner id", domain.ErrInvalidOwner)
	}
	return domain.OwnerRef{Kind: kind, ID: id}, nil
}
