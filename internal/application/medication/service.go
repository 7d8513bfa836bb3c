package medication

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/med-reminder-api/internal/domain"
	"github.com/med-reminder-api/internal/pkg/id"
	"github.com/med-reminder-api/internal/pkg/validate"
)

// Service handles medication entry and history reporting. Creating a
// medication fans out one reminder record per scheduled time-of-day so the
// dispatch engine picks them up without any extra bookkeeping.
type Service interface {
	Create(ctx context.Context, req domain.CreateMedicationRequest) (*domain.Medication, []domain.Reminder, error)
	Get(ctx context.Context, medicationID string) (*domain.Medication, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Medication, error)
	Delete(ctx context.Context, medicationID string) error
	EmailReport(ctx context.Context, userID, email, from, to string) error
}

type medicationStore interface {
	Put(ctx context.Context, m *domain.Medication) error
	Get(ctx context.Context, medicationID string) (*domain.Medication, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Medication, error)
	Delete(ctx context.Context, medicationID string) error
}

type reminderStore interface {
	Put(ctx context.Context, r *domain.Reminder) error
	ListByUserRange(ctx context.Context, userID, from, to string) ([]domain.Reminder, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo         medicationStore
	reminderRepo reminderStore
	mailer       mailer
}

func NewService(repo medicationStore, reminderRepo reminderStore, m mailer) Service {
	return &service{repo: repo, reminderRepo: reminderRepo, mailer: m}
}

func (s *service) Create(ctx context.Context, req domain.CreateMedicationRequest) (*domain.Medication, []domain.Reminder, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	med := &domain.Medication{
		MedicationID: id.New(),
		UserID:       req.UserID,
		Name:         req.Name,
		Quantity:     req.Quantity,
		Frequency:    req.Frequency,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, med); err != nil {
		return nil, nil, fmt.Errorf("store medication: %w", err)
	}

	reminders := make([]domain.Reminder, 0, len(req.Times))
	for _, t := range req.Times {
		rem := domain.Reminder{
			ReminderID:         id.New(),
			UserID:             req.UserID,
			MedicationID:       med.MedicationID,
			MedicineName:       req.Name,
			Description:        req.Description,
			Dose:               req.Quantity,
			Frequency:          req.Frequency,
			Date:               req.Date,
			Time:               t,
			RepeatSchedule:     req.RepeatSchedule,
			TotalRemindersLeft: req.TotalRemindersLeft,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.reminderRepo.Put(ctx, &rem); err != nil {
			return nil, nil, fmt.Errorf("store reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return med, reminders, nil
}

func (s *service) Get(ctx context.Context, medicationID string) (*domain.Medication, error) {
	return s.repo.Get(ctx, medicationID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Medication, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Delete(ctx context.Context, medicationID string) error {
	return s.repo.Delete(ctx, medicationID)
}

const reportPlain = `Medication report {{.From}} to {{.To}}

Taken:
{{range .Taken}}* {{.MedicineName}} - {{.Date}} {{.Time}}
{{else}}(none)
{{end}}
Missed or pending:
{{range .Missed}}* {{.MedicineName}} - {{.Date}} {{.Time}}
{{else}}(none)
{{end}}`

var reportPlainTemplate = template.Must(template.New("report").Parse(reportPlain))

// EmailReport renders the adherence report over [from, to] and mails it.
func (s *service) EmailReport(ctx context.Context, userID, email, from, to string) error {
	if s.mailer == nil {
		return fmt.Errorf("mailer not configured: %w", domain.ErrBadRequest)
	}
	reminders, err := s.reminderRepo.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		return fmt.Errorf("list reminders for report: %w", err)
	}
	report := domain.NewAdherenceReport(userID, from, to, reminders)

	body := &bytes.Buffer{}
	if err := reportPlainTemplate.Execute(body, report); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := s.mailer.SendEmail(email, "Medication report", body.String()); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
