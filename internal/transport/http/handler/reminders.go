package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/med-reminder-api/internal/application/reminder"
	"github.com/med-reminder-api/internal/domain"
)

// ReminderHandler handles reminder lifecycle endpoints: the surface the
// mobile client's notification response handler calls.
type ReminderHandler struct {
	svc reminder.Service
}

func NewReminderHandler(svc reminder.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reminders, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reminders)
}

func (h *ReminderHandler) Get(w http.ResponseWriter, r *http.Request) {
	rem, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

// List returns one user's reminders for a given local date.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	date := r.URL.Query().Get("date")
	if userID == "" || date == "" {
		writeError(w, http.StatusBadRequest, "user_id and date are required")
		return
	}
	reminders, err := h.svc.ListByDate(r.Context(), userID, date)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (h *ReminderHandler) MarkTaken(w http.ResponseWriter, r *http.Request) {
	rem, err := h.svc.MarkTaken(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	rem, err := h.svc.Snooze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) UpdateTime(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rem, err := h.svc.UpdateTime(r.Context(), chi.URLParam(r, "id"), body.Time)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reminder deleted"})
}

// Report returns taken vs. missed reminders over a date range.
func (h *ReminderHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if userID == "" || from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "user_id, from and to are required")
		return
	}
	report, err := h.svc.Report(r.Context(), userID, from, to)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
