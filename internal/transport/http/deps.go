package http

import (
	"github.com/med-reminder-api/internal/application/dispatch"
	"github.com/med-reminder-api/internal/infrastructure/dynamo"
	"github.com/med-reminder-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ReminderRepo    *dynamo.ReminderRepo
	DestinationRepo *dynamo.DestinationRepo
	MedicationRepo  *dynamo.MedicationRepo
	Dispatcher      *dispatch.Service
	Mailer          smtp.Mailer
	SnoozeMinutes   int
}
