package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/med-reminder-api/internal/application/destination"
	"github.com/med-reminder-api/internal/domain"
)

// DestinationHandler handles push destination registration endpoints.
type DestinationHandler struct {
	svc destination.Service
}

func NewDestinationHandler(svc destination.Service) *DestinationHandler {
	return &DestinationHandler{svc: svc}
}

// Register upserts the caller's push destination (token + timezone).
func (h *DestinationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dest, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dest)
}

func (h *DestinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	dest, err := h.svc.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dest)
}

func (h *DestinationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "destination deleted"})
}
