package document

import (
	"log/slog"
	"tender-docs/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// UserIDHeader carries the id of the acting user
const UserIDHeader = "X-User-ID"

// defaultMaxMemory is the part of a multipart form kept in memory, the rest spills to disk
const defaultMaxMemory int64 = 32 << 20

// HandlerV1 is the handler for v1 document routes
type HandlerV1 struct {
	documentService port.DocumentService
	maxMemory       int64
	logger          *slog.Logger
}

// NewDocumentHandlerV1 creates HandlerV1
func NewDocumentHandlerV1(service port.DocumentService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		documentService: service,
		maxMemory:       defaultMaxMemory,
		logger:          logger,
	}
}

// Routes exposes document routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.UploadDocumentsV1)
	router.Get("/{documentID}", h.GetDocumentV1)
	router.Get("/{documentID}/content", h.DownloadDocumentV1)
	router.Get("/{documentID}/integrity", h.VerifyDocumentV1)
	router.Delete("/{documentID}", h.DeleteDocumentV1)

	return router
}

// OwnerRoutes exposes the documents of one owner
func (h *HandlerV1) OwnerRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{ownerKind}/{ownerID}/documents", h.ListOwnerDocumentsV1)
	router.Delete("/{ownerKind}/{ownerID}/documents", h.DeleteOwnerDocumentsV1)

	return router
}
