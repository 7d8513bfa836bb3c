package domain

import "time"

// PushMessage is the notification payload handed to the transport. Data
// carries enough structure for the client's response handler to apply
// taken/snooze transitions without a further read.
type PushMessage struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Sound string          `json:"sound"`
	Data  PushMessageData `json:"data"`
}

// PushMessageData is the structured part of a push payload.
type PushMessageData struct {
	ReminderID   string `json:"reminderId"`
	Time         string `json:"time"`
	MedicineName string `json:"medicineName"`
	Description  string `json:"description"`
}

// DispatchResult records one attempted send, success or not. Transport
// failures are captured here rather than raised.
type DispatchResult struct {
	To         string `json:"to"`
	UserID     string `json:"user_id"`
	ReminderID string `json:"reminder_id"`
	Status     int    `json:"status"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// OK reports whether the transport accepted the send.
func (r DispatchResult) OK() bool {
	return r.Error == "" && r.Status >= 200 && r.Status < 300
}

// RunReport is the structured outcome of one dispatch run. It is returned to
// the trigger caller and archived for audit; the engine never persists it.
type RunReport struct {
	Success    bool             `json:"success"`
	TotalSent  int              `json:"totalSent"`
	Results    []DispatchResult `json:"results"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}
