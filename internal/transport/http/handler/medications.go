package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/med-reminder-api/internal/application/medication"
	"github.com/med-reminder-api/internal/domain"
)

// MedicationHandler handles medication entry and report endpoints.
type MedicationHandler struct {
	svc medication.Service
}

func NewMedicationHandler(svc medication.Service) *MedicationHandler {
	return &MedicationHandler{svc: svc}
}

// Create stores a medication and schedules its reminders in one call.
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	med, reminders, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Medication *domain.Medication `json:"medication"`
		Reminders  []domain.Reminder  `json:"reminders"`
	}{med, reminders})
}

func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	med, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, med)
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	medications, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, medications)
}

func (h *MedicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "medication deleted"})
}

// EmailReport mails the adherence report for a date range.
func (h *MedicationHandler) EmailReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		From   string `json:"from"`
		To     string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.UserID == "" || body.Email == "" || body.From == "" || body.To == "" {
		writeError(w, http.StatusBadRequest, "user_id, email, from and to are required")
		return
	}
	if err := h.svc.EmailReport(r.Context(), body.UserID, body.Email, body.From, body.To); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "report sent"})
}
