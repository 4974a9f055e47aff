package document

import (
	"context"
	"log/slog"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// compensationTimeout bounds best-effort cleanups that outlive the request context
const compensationTimeout = 10 * time.Second

var uploadOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docs_upload_outcomes_total",
	Help: "Document uploads by final outcome",
}, []string{"outcome"})

const (
	outcomeCompleted        = "completed"
	outcomeRejected         = "rejected"
	outcomeDuplicate        = "duplicate"
	outcomeOwnerNotFound    = "owner_not_found"
	outcomeRolledBack       = "rolled_back"
	outcomeOrphanIncomplete = "orphan_incomplete"
	outcomePersistenceError = "persistence_error"
)

type documentService struct {
	uow     port.UnitOfWork
	storage port.ObjectStorage
	policy  domain.UploadPolicy
	logger  *slog.Logger
	now     func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(uow port.UnitOfWork, storage port.ObjectStorage, policy domain.UploadPolicy, logger *slog.Logger) port.DocumentService {
	return &documentService{
		uow:     uow,
		storage: storage,
		policy:  policy,
		logger:  logger.With(slog.String("component", "document_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// detached returns a context for compensating actions that must run even
// when the caller has gone away
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
}

func docAttrs(doc *domain.Document) []any {
	return []any{
		"document_id", doc.ID,
		"object_key", doc.ObjectKey,
		"owner", doc.Owner().String(),
	}
}
