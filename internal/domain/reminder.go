package domain

import "time"

// Reminder is one scheduled dose occurrence of one medication for one user.
// Date and Time are stored in the owning user's local calendar/clock frame,
// never UTC: the dispatcher converts its own "now" into that frame before
// comparing, not the other way around.
type Reminder struct {
	ReminderID         string    `json:"id" dynamodbav:"reminder_id"`
	UserID             string    `json:"user_id" dynamodbav:"user_id"`
	MedicationID       string    `json:"medication_id" dynamodbav:"medication_id"`
	MedicineName       string    `json:"medicine_name" dynamodbav:"medicine_name"`
	Description        string    `json:"description" dynamodbav:"description"`
	Dose               string    `json:"dose" dynamodbav:"dose"`
	Frequency          string    `json:"frequency" dynamodbav:"frequency"`
	Date               string    `json:"date" dynamodbav:"date"` // YYYY-MM-DD, user-local
	Time               string    `json:"time" dynamodbav:"time"` // HH:MM, user-local, zero-padded
	Taken              bool      `json:"taken" dynamodbav:"taken"`
	Snoozed            bool      `json:"snoozed" dynamodbav:"snoozed"`
	NotificationSend   bool      `json:"notification_send" dynamodbav:"notification_send"`
	RepeatSchedule     bool      `json:"repeat_schedule" dynamodbav:"repeat_schedule"`
	TotalRemindersLeft int       `json:"total_reminders_left" dynamodbav:"total_reminders_left"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Eligible reports whether the reminder belongs in a dispatch run's due set:
// not yet taken and not yet notified, or part of a recurring series with
// occurrences remaining. Once Taken is true the single-occurrence arm is
// closed for good.
func (r Reminder) Eligible() bool {
	if !r.Taken && !r.NotificationSend {
		return true
	}
	return r.RepeatSchedule && r.TotalRemindersLeft > 0
}

// CreateReminderRequest fans out one reminder record per scheduled time-of-day.
type CreateReminderRequest struct {
	UserID             string   `json:"user_id" validate:"required"`
	MedicationID       string   `json:"medication_id"`
	MedicineName       string   `json:"medicine_name" validate:"required"`
	Description        string   `json:"description"`
	Dose               string   `json:"dose"`
	Frequency          string   `json:"frequency"`
	Date               string   `json:"date" validate:"required,datetime=2006-01-02"`
	Times              []string `json:"times" validate:"required,min=1,dive,datetime=15:04"`
	RepeatSchedule     bool     `json:"repeat_schedule"`
	TotalRemindersLeft int      `json:"total_reminders_left" validate:"gte=0"`
}
