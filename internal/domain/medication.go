package domain

import "time"

// Medication is the parent record reminders reference for display fields.
type Medication struct {
	MedicationID string    `json:"id" dynamodbav:"medication_id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Quantity     string    `json:"quantity" dynamodbav:"quantity"` // dose display, e.g. "2"
	Frequency    string    `json:"frequency" dynamodbav:"frequency"`
	Description  string    `json:"description" dynamodbav:"description"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// CreateMedicationRequest creates a medication and schedules its reminders.
type CreateMedicationRequest struct {
	UserID             string   `json:"user_id" validate:"required"`
	Name               string   `json:"name" validate:"required"`
	Quantity           string   `json:"quantity" validate:"required"`
	Frequency          string   `json:"frequency" validate:"required"`
	Description        string   `json:"description"`
	Date               string   `json:"date" validate:"required,datetime=2006-01-02"`
	Times              []string `json:"times" validate:"required,min=1,dive,datetime=15:04"`
	RepeatSchedule     bool     `json:"repeat_schedule"`
	TotalRemindersLeft int      `json:"total_reminders_left" validate:"gte=0"`
}

// AdherenceReport splits a user's reminders over a date range into taken and
// missed-or-pending buckets for the history view.
type AdherenceReport struct {
	UserID string     `json:"user_id"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Taken  []Reminder `json:"taken"`
	Missed []Reminder `json:"missed"`
}

// NewAdherenceReport buckets reminders by their taken flag.
func NewAdherenceReport(userID, from, to string, reminders []Reminder) *AdherenceReport {
	report := &AdherenceReport{UserID: userID, From: from, To: to}
	for _, r := range reminders {
		if r.Taken {
			report.Taken = append(report.Taken, r)
		} else {
			report.Missed = append(report.Missed, r)
		}
	}
	return report
}
