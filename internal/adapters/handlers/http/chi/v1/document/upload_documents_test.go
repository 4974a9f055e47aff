package document_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	http2 "net/http"
	"net/http/httptest"
	"net/textproto"
	"tender-docs/internal/adapters/handlers/http/chi"
	document3 "tender-docs/internal/adapters/handlers/http/chi/v1/document"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/service/document"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRouter(svc *document.MockDocumentService) http2.Handler {
	handler := document3.NewDocumentHandlerV1(svc, discardLogger)
	return chi.NewRouter(discardLogger, handler, nil, "", 0)
}

type part struct {
	name        string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, userID string, fields map[string]string, parts ...part) *http2.Request {
	body, contentType := multipartBody(t, fields, parts...)
	req := httptest.NewRequest(http2.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	if userID != "" {
		req.Header.Set(document3.UserIDHeader, userID)
	}
	return req
}

func TestUploadDocumentsV1_Single(t *testing.T) {
	userID := uuid.New()
	garaID := uuid.New()
	lottoID := uuid.New()
	fields := map[string]string{"gara_id": garaID.String(), "lotto_id": lottoID.String()}
	pdf := part{name: "offerta.pdf", contentType: "application/pdf", content: []byte("%PDF-1.7 body")}

	t.Run("nominal", func(t *testing.T) {
		// Arrange
		docID := uuid.New()
		svc := document.NewMockDocumentService()
		svc.On("Upload", mock.Anything, mock.MatchedBy(func(req domain.UploadRequest) bool {
			body, err := io.ReadAll(req.Body)
			return err == nil &&
				string(body) == "%PDF-1.7 body" &&
				req.FileName == "offerta.pdf" &&
				req.ContentType == "application/pdf" &&
				req.SizeBytes == int64(len(pdf.content)) &&
				req.UploadedBy == userID &&
				assert.ObjectsAreEqual(domain.OwnerChain{
					{Kind: domain.OwnerKindGara, ID: garaID},
					{Kind: domain.OwnerKindLotto, ID: lottoID},
				}, req.Owners)
		})).Return(docID, nil).Once()
		w := httptest.NewRecorder()

		// Act
		newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), fields, pdf))

		// Assert
		assert.Equal(t, http2.StatusCreated, w.Code)
		var resp document3.V1UploadDocumentsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Results, 1)
		require.NotNil(t, resp.Results[0].DocumentID)
		assert.Equal(t, docID, *resp.Results[0].DocumentID)
		assert.Equal(t, "offerta.pdf", resp.Results[0].FileName)
		svc.AssertExpectations(t)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.NewValidationError(domain.ErrExtensionNotAllowed, "extension .exe is not allowed"), http2.StatusUnprocessableEntity},
		{"duplicate name", domain.NewValidationError(domain.ErrDuplicateName, "a file named offerta.pdf already exists"), http2.StatusConflict},
		{"owner not found", domain.ErrOwnerNotFound, http2.StatusNotFound},
		{"invalid owner", domain.ErrInvalidOwner, http2.StatusBadRequest},
		{"rolled back", domain.ErrUploadFailed, http2.StatusServiceUnavailable},
		{"persistence", domain.ErrPersistence, http2.StatusServiceUnavailable},
	}
	for _, tc := range errorCases {
		t.Run("error - "+tc.name, func(t *testing.T) {
			svc := document.NewMockDocumentService()
			svc.On("Upload", mock.Anything, mock.Anything).Return(uuid.Nil, tc.err).Once()
			w := httptest.NewRecorder()

			newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), fields, pdf))

			assert.Equal(t, tc.status, w.Code)
			svc.AssertExpectations(t)
		})
	}

	t.Run("error - validation reason is returned", func(t *testing.T) {
		svc := document.NewMockDocumentService()
		svc.On("Upload", mock.Anything, mock.Anything).
			Return(uuid.Nil, domain.NewValidationError(domain.ErrFileTooLarge, "file is too large")).Once()
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), fields, pdf))

		assert.Contains(t, w.Body.String(), "file is too large")
	})

	t.Run("error - infrastructure details are hidden", func(t *testing.T) {
		svc := document.NewMockDocumentService()
		svc.On("Upload", mock.Anything, mock.Anything).Return(uuid.New(), domain.ErrStorage).Once()
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), fields, pdf))

		assert.Equal(t, http2.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), domain.ErrStorage.Error())
	})
}

func TestUploadDocumentsV1_BadRequest(t *testing.T) {
	userID := uuid.New().String()
	pdf := part{name: "offerta.pdf", contentType: "application/pdf", content: []byte("x")}
	owner := map[string]string{"registry_entry_id": uuid.New().String()}

	tests := []struct {
		name string
		req  func(t *testing.T) *http2.Request
	}{
		{"missing user", func(t *testing.T) *http2.Request { return uploadRequest(t, "", owner, pdf) }},
		{"invalid user", func(t *testing.T) *http2.Request { return uploadRequest(t, "nope", owner, pdf) }},
		{"missing owner", func(t *testing.T) *http2.Request { return uploadRequest(t, userID, nil, pdf) }},
		{"invalid owner id", func(t *testing.T) *http2.Request {
			return uploadRequest(t, userID, map[string]string{"gara_id": "not-a-uuid"}, pdf)
		}},
		{"no file", func(t *testing.T) *http2.Request { return uploadRequest(t, userID, owner) }},
		{"not multipart", func(t *testing.T) *http2.Request {
			req := httptest.NewRequest(http2.MethodPost, "/api/v1/documents", bytes.NewBufferString("{}"))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(document3.UserIDHeader, userID)
			return req
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := document.NewMockDocumentService()
			w := httptest.NewRecorder()

			newRouter(svc).ServeHTTP(w, tt.req(t))

			assert.Equal(t, http2.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "UploadBatch", mock.Anything, mock.Anything)
		})
	}
}

func TestUploadDocumentsV1_Batch(t *testing.T) {
	userID := uuid.New()
	owner := map[string]string{"registry_entry_id": uuid.New().String()}
	a := part{name: "a.pdf", contentType: "application/pdf", content: []byte("a")}
	b := part{name: "b.exe", contentType: "application/octet-stream", content: []byte("b")}

	t.Run("all succeeded", func(t *testing.T) {
		idA, idB := uuid.New(), uuid.New()
		svc := document.NewMockDocumentService()
		svc.On("UploadBatch", mock.Anything, mock.MatchedBy(func(reqs []domain.UploadRequest) bool {
			return len(reqs) == 2 && reqs[0].FileName == "a.pdf" && reqs[1].FileName == "b.exe"
		})).Return([]domain.UploadResult{
			{FileName: "a.pdf", DocumentID: idA},
			{FileName: "b.exe", DocumentID: idB},
		}, nil).Once()
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), owner, a, b))

		assert.Equal(t, http2.StatusCreated, w.Code)
		var resp document3.V1UploadDocumentsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Results, 2)
		assert.Equal(t, idA, *resp.Results[0].DocumentID)
		assert.Equal(t, idB, *resp.Results[1].DocumentID)
		svc.AssertExpectations(t)
	})

	t.Run("partial failure", func(t *testing.T) {
		idA := uuid.New()
		svc := document.NewMockDocumentService()
		svc.On("UploadBatch", mock.Anything, mock.Anything).Return([]domain.UploadResult{
			{FileName: "a.pdf", DocumentID: idA},
			{FileName: "b.exe", Err: domain.NewValidationError(domain.ErrExtensionNotAllowed, "extension .exe is not allowed")},
		}, nil).Once()
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), owner, a, b))

		assert.Equal(t, http2.StatusMultiStatus, w.Code)
		var resp document3.V1UploadDocumentsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Results, 2)
		assert.Nil(t, resp.Results[1].DocumentID)
		assert.Equal(t, "extension .exe is not allowed", resp.Results[1].Error)
	})

	t.Run("batch rejected", func(t *testing.T) {
		svc := document.NewMockDocumentService()
		svc.On("UploadBatch", mock.Anything, mock.Anything).
			Return([]domain.UploadResult(nil), domain.NewValidationError(domain.ErrTooManyFiles, "too many files")).Once()
		w := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(w, uploadRequest(t, userID.String(), owner, a, b))

		assert.Equal(t, http2.StatusUnprocessableEntity, w.Code)
	})
}
