package handler

import (
	"context"
	"net/http"

	"github.com/med-reminder-api/internal/domain"
)

// DispatchRunner is the engine surface the trigger endpoint needs.
type DispatchRunner interface {
	Run(ctx context.Context) (*domain.RunReport, error)
}

// DispatchHandler exposes the dispatch engine to an external scheduler.
type DispatchHandler struct {
	engine DispatchRunner
}

func NewDispatchHandler(engine DispatchRunner) *DispatchHandler {
	return &DispatchHandler{engine: engine}
}

// Run triggers one dispatch pass. Partial send failures still return 200 with
// per-result detail; only a bulk-read failure yields 500.
func (h *DispatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, RunEnvelope{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, RunEnvelope{
		Success:   report.Success,
		TotalSent: report.TotalSent,
		Results:   report.Results,
	})
}
