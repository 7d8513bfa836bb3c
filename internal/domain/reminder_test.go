package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The due-set predicate: (taken=false AND notificationSend=false) OR
// (repeatSchedule=true AND totalRemindersLeft>0). All flag combinations.
func TestReminderEligible(t *testing.T) {
	tests := []struct {
		name   string
		taken  bool
		sent   bool
		repeat bool
		left   int
		want   bool
	}{
		{"fresh pending", false, false, false, 0, true},
		{"already notified", false, true, false, 0, false},
		{"taken", true, false, false, 0, false},
		{"taken and notified", true, true, false, 0, false},
		{"recurring with occurrences left", true, true, true, 3, true},
		{"recurring exhausted", true, true, true, 0, false},
		{"recurring pending", false, false, true, 3, true},
		{"notified but recurring", false, true, true, 1, true},
		{"repeat flag without counter", false, true, true, 0, false},
		{"counter without repeat flag", true, true, false, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reminder{
				Taken:              tt.taken,
				NotificationSend:   tt.sent,
				RepeatSchedule:     tt.repeat,
				TotalRemindersLeft: tt.left,
			}
			assert.Equal(t, tt.want, r.Eligible())
		})
	}
}

func TestNewAdherenceReport_Buckets(t *testing.T) {
	reminders := []Reminder{
		{ReminderID: "a", Taken: true},
		{ReminderID: "b", Taken: false},
		{ReminderID: "c", Taken: true},
	}
	report := NewAdherenceReport("u1", "2024-01-01", "2024-01-31", reminders)
	assert.Len(t, report.Taken, 2)
	assert.Len(t, report.Missed, 1)
	assert.Equal(t, "b", report.Missed[0].ReminderID)
}
