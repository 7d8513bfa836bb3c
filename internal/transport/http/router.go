package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/med-reminder-api/internal/application/destination"
	"github.com/med-reminder-api/internal/application/medication"
	"github.com/med-reminder-api/internal/application/reminder"
	"github.com/med-reminder-api/internal/config"
	"github.com/med-reminder-api/internal/transport/http/handler"
	appmiddleware "github.com/med-reminder-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// The trigger is meant for a once-a-minute scheduler; anything chattier
	// is a misconfigured caller.
	triggerRL := appmiddleware.NewRateLimiter(rate.Limit(2), 5)

	reminderSvc := reminder.NewService(deps.ReminderRepo, deps.SnoozeMinutes)
	destinationSvc := destination.NewService(deps.DestinationRepo)
	medicationSvc := medication.NewService(deps.MedicationRepo, deps.ReminderRepo, deps.Mailer)

	healthH := handler.NewHealthHandler()
	dispatchH := handler.NewDispatchHandler(deps.Dispatcher)
	reminderH := handler.NewReminderHandler(reminderSvc)
	destinationH := handler.NewDestinationHandler(destinationSvc)
	medicationH := handler.NewMedicationHandler(medicationSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(triggerRL.Limit).Post("/dispatch/run", dispatchH.Run)

		r.Post("/destinations", destinationH.Register)
		r.Get("/destinations/{userID}", destinationH.Get)
		r.Delete("/destinations/{userID}", destinationH.Delete)

		r.Post("/reminders", reminderH.Create)
		r.Get("/reminders", reminderH.List)
		r.Get("/reminders/report", reminderH.Report)
		r.Get("/reminders/{id}", reminderH.Get)
		r.Put("/reminders/{id}/taken", reminderH.MarkTaken)
		r.Put("/reminders/{id}/snooze", reminderH.Snooze)
		r.Put("/reminders/{id}/time", reminderH.UpdateTime)
		r.Delete("/reminders/{id}", reminderH.Delete)

		r.Post("/medications", medicationH.Create)
		r.Get("/medications", medicationH.List)
		r.Post("/medications/report/email", medicationH.EmailReport)
		r.Get("/medications/{id}", medicationH.Get)
		r.Delete("/medications/{id}", medicationH.Delete)
	})

	return r
}
