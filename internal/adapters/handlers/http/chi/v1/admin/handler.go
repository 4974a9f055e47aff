package admin

import (
	"log/slog"
	"tender-docs/internal/core/port"
	"time"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 admin routes
type HandlerV1 struct {
	reconcileService port.ReconcileService
	defaultThreshold time.Duration
	logger           *slog.Logger
}

// NewAdminHandlerV1 creates HandlerV1
func NewAdminHandlerV1(service port.ReconcileService, defaultThreshold time.Duration, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		reconcileService: service,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/reconcile", h.ReconcileV1)

	return router
}
