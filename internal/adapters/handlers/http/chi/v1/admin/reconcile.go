package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"tender-docs/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// V1ReconcileResponse summarises a reconciliation sweep
type V1ReconcileResponse struct {
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    time.Time   `json:"completed_at"`
	ThresholdHours float64     `json:"threshold_hours"`
	Cutoff         time.Time   `json:"cutoff"`
	Found          int         `json:"found"`
	Processed      int         `json:"processed"`
	Skipped        int         `json:"skipped"`
	Failed         []uuid.UUID `json:"failed"`
}

// ReconcileV1 removes incomplete uploads older than threshold_hours
func (h *HandlerV1) ReconcileV1(w http.ResponseWriter, r *http.Request) {

	threshold := h.defaultThreshold
	if raw := r.URL.Query().Get("threshold_hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours <= 0 {
			http.Error(w, "threshold_hours must be a positive number", http.StatusBadRequest)
			return
		}
		threshold = domain.ReconcileTrigger{ThresholdHours: hours}.Threshold()
	}

	report, err := h.reconcileService.Reconcile(r.Context(), threshold)
	switch {
	case errors.Is(err, domain.ErrReconcileInProgress):
		http.Error(w, "reconciliation already in progress", http.StatusConflict)
		return
	case errors.Is(err, domain.ErrInvalidThreshold):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("reconciliation failed", "threshold", threshold, "error", err)
		http.Error(w, "operation failed, retry later", http.StatusServiceUnavailable)
		return
	}

	resp := V1ReconcileResponse{
		StartedAt:      report.StartedAt,
		CompletedAt:    report.CompletedAt,
		ThresholdHours: report.Threshold.Hours(),
		Cutoff:         report.Cutoff,
		Found:          report.Found,
		Processed:      report.Processed,
		Skipped:        report.Skipped,
		Failed:         report.Failed,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
