package document

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"tender-docs/internal/core/domain"

	"github.com/google/uuid"
)

// fileField is the multipart field holding uploaded files
const fileField = "file"

// V1UploadResult is the outcome of one uploaded file
type V1UploadResult struct {
	FileName   string     `json:"file_name"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// V1UploadDocumentsResponse is the response to an upload
type V1UploadDocumentsResponse struct {
	Results []V1UploadResult `json:"results"`
}

// UploadDocumentsV1 uploads one or more files to an owner.
// A single file answers with the status of its outcome; a batch answers 201
// when every file succeeded and 207 otherwise.
func (h *HandlerV1) UploadDocumentsV1(w http.ResponseWriter, r *http.Request) {

	uploadedBy, err := userID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	owners, err := ownerChainFromForm(r.MultipartForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File[fileField]
	if len(headers) == 0 {
		http.Error(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	reqs := make([]domain.UploadRequest, 0, len(headers))
	for _, fh := range headers {
		f, openErr := fh.Open()
		if openErr != nil {
			h.logger.Error("error opening uploaded part", "file_name", fh.Filename, "error", openErr)
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		defer f.Close()
		reqs = append(reqs, domain.UploadRequest{
			Owners:      owners,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			SizeBytes:   fh.Size,
			Body:        f,
			UploadedBy:  uploadedBy,
		})
	}

	if len(reqs) == 1 {
		id, uploadErr := h.documentService.Upload(r.Context(), reqs[0])
		if uploadErr != nil {
			h.writeServiceError(w, uploadErr, "document_id", id, "owner", owners.Owner().String(), "file_name", reqs[0].FileName)
			return
		}
		h.writeJSON(w, http.StatusCreated, V1UploadDocumentsResponse{
			Results: []V1UploadResult{{FileName: reqs[0].FileName, DocumentID: &id}},
		})
		return
	}

	results, batchErr := h.documentService.UploadBatch(r.Context(), reqs)
	if batchErr != nil {
		h.writeServiceError(w, batchErr, "owner", owners.Owner().String())
		return
	}

	status := http.StatusCreated
	resp := V1UploadDocumentsResponse{Results: make([]V1UploadResult, 0, len(results))}
	for _, res := range results {
		item := V1UploadResult{FileName: res.FileName}
		if res.Err != nil {
			status = http.StatusMultiStatus
			item.Error = publicReason(res.Err)
			if !domain.IsValidation(res.Err) {
				h.logger.Error("batch upload: file failed", "document_id", res.DocumentID, "file_name", res.FileName, "error", res.Err)
			}
		} else {
			id := res.DocumentID
			item.DocumentID = &id
		}
		resp.Results = append(resp.Results, item)
	}
	h.writeJSON(w, status, resp)
}

// ownerChainFromForm reads the owner ids from root to leaf
func ownerChainFromForm(form *multipart.Form) (domain.OwnerChain, error) {
	var chain domain.OwnerChain
	for _, kind := range domain.OwnerKinds {
		field := string(kind) + "_id"
		values := form.Value[field]
		if len(values) == 0 || values[0] == "" {
			continue
		}
		id, err := uuid.Parse(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid %s", field)
		}
		chain = append(chain, domain.OwnerRef{Kind: kind, ID: id})
	}
	if len(chain) == 0 {
		return nil, errors.New("an owner id is required")
	}
	return chain, nil
}

// publicReason is the message shown to users for a failed file
func publicReason(err error) string {
	switch {
	case domain.IsValidation(err), errors.Is(err, domain.ErrInvalidOwner):
		return err.Error()
	case errors.Is(err, domain.ErrOwnerNotFound):
		return "owner not found"
	default:
		return retryMessage
	}
}
