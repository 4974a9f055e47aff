package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"
)

type triggerHandler struct {
	svc              port.ReconcileService
	defaultThreshold time.Duration
	logger           *slog.Logger
}

// NewTriggerHandler creates the handler of reconciliation trigger messages.
// A trigger without threshold_hours uses defaultThreshold.
func NewTriggerHandler(svc port.ReconcileService, defaultThreshold time.Duration, logger *slog.Logger) port.MessageService {
	return &triggerHandler{
		svc:              svc,
		defaultThreshold: defaultThreshold,
		logger:           logger,
	}
}

func (h *triggerHandler) HandleMessage(ctx context.Context, data []byte) error {
	var trigger domain.ReconcileTrigger

	if len(data) > 0 {
		if err := json.Unmarshal(data, &trigger); err != nil {
			return fmt.Errorf("could not unmarshal reconcile trigger: %v", err)
		}
	}

	threshold := h.defaultThreshold
	if trigger.ThresholdHours != 0 {
		threshold = trigger.Threshold()
	}

	h.logger.Info("handling reconcile trigger", "threshold", threshold.String())

	_, err := h.svc.Reconcile(ctx, threshold)
	switch {
	case errors.Is(err, domain.ErrReconcileInProgress):
		// the running sweep covers this trigger
		return nil
	case errors.Is(err, domain.ErrInvalidThreshold):
		h.logger.Warn("reconcile trigger dropped", "error", err)
		return nil
	}
	return err
}
