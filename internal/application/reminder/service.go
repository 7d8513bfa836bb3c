package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/med-reminder-api/internal/domain"
	"github.com/med-reminder-api/internal/pkg/id"
	"github.com/med-reminder-api/internal/pkg/localtime"
	"github.com/med-reminder-api/internal/pkg/validate"
)

// Service applies the reminder lifecycle the dispatch engine depends on:
// pending → sent → taken, or snoozed back to pending on a later slot.
type Service interface {
	Create(ctx context.Context, req domain.CreateReminderRequest) ([]domain.Reminder, error)
	Get(ctx context.Context, reminderID string) (*domain.Reminder, error)
	ListByDate(ctx context.Context, userID, date string) ([]domain.Reminder, error)
	MarkTaken(ctx context.Context, reminderID string) (*domain.Reminder, error)
	Snooze(ctx context.Context, reminderID string) (*domain.Reminder, error)
	UpdateTime(ctx context.Context, reminderID, newTime string) (*domain.Reminder, error)
	Delete(ctx context.Context, reminderID string) error
	Report(ctx context.Context, userID, from, to string) (*domain.AdherenceReport, error)
}

type reminderStore interface {
	Put(ctx context.Context, r *domain.Reminder) error
	Get(ctx context.Context, reminderID string) (*domain.Reminder, error)
	Update(ctx context.Context, reminderID string, updates map[string]interface{}) error
	Delete(ctx context.Context, reminderID string) error
	ListByUserDate(ctx context.Context, userID, date string) ([]domain.Reminder, error)
	ListByUserRange(ctx context.Context, userID, from, to string) ([]domain.Reminder, error)
}

type service struct {
	repo          reminderStore
	snoozeMinutes int
}

func NewService(repo reminderStore, snoozeMinutes int) Service {
	if snoozeMinutes <= 0 {
		snoozeMinutes = 5
	}
	return &service{repo: repo, snoozeMinutes: snoozeMinutes}
}

// Create fans out one reminder record per scheduled time-of-day.
func (s *service) Create(ctx context.Context, req domain.CreateReminderRequest) ([]domain.Reminder, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	reminders := make([]domain.Reminder, 0, len(req.Times))
	for _, t := range req.Times {
		rem := domain.Reminder{
			ReminderID:         id.New(),
			UserID:             req.UserID,
			MedicationID:       req.MedicationID,
			MedicineName:       req.MedicineName,
			Description:        req.Description,
			Dose:               req.Dose,
			Frequency:          req.Frequency,
			Date:               req.Date,
			Time:               t,
			RepeatSchedule:     req.RepeatSchedule,
			TotalRemindersLeft: req.TotalRemindersLeft,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.repo.Put(ctx, &rem); err != nil {
			return nil, fmt.Errorf("store reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, nil
}

func (s *service) Get(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	return s.repo.Get(ctx, reminderID)
}

func (s *service) ListByDate(ctx context.Context, userID, date string) ([]domain.Reminder, error) {
	return s.repo.ListByUserDate(ctx, userID, date)
}

// MarkTaken makes the reminder terminal for dispatch purposes. Idempotent:
// marking an already-taken reminder changes nothing. For a recurring series
// the remaining-occurrences counter decrements here, and the series closes
// once it reaches zero.
func (s *service) MarkTaken(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	rem, err := s.repo.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if rem.Taken {
		return rem, nil
	}
	updates := map[string]interface{}{"taken": true}
	if rem.RepeatSchedule {
		left := rem.TotalRemindersLeft - 1
		if left < 0 {
			left = 0
		}
		updates["total_reminders_left"] = left
		if left == 0 {
			updates["repeat_schedule"] = false
		}
	}
	if err := s.repo.Update(ctx, reminderID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, reminderID)
}

// Snooze pushes the reminder's slot forward and reopens it for dispatch by
// clearing notification_send. A taken reminder cannot be snoozed.
func (s *service) Snooze(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	rem, err := s.repo.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if rem.Taken {
		return nil, fmt.Errorf("reminder already taken: %w", domain.ErrConflict)
	}
	newTime, err := localtime.AddMinutes(rem.Time, s.snoozeMinutes)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	updates := map[string]interface{}{
		"snoozed":           true,
		"notification_send": false,
		"time":              newTime,
	}
	if err := s.repo.Update(ctx, reminderID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, reminderID)
}

func (s *service) UpdateTime(ctx context.Context, reminderID, newTime string) (*domain.Reminder, error) {
	if _, err := time.Parse(localtime.ClockLayout, newTime); err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", newTime, domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, reminderID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, reminderID, map[string]interface{}{"time": newTime}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, reminderID)
}

func (s *service) Delete(ctx context.Context, reminderID string) error {
	return s.repo.Delete(ctx, reminderID)
}

// Report returns taken vs. missed reminders over an inclusive date range.
func (s *service) Report(ctx context.Context, userID, from, to string) (*domain.AdherenceReport, error) {
	if _, err := time.Parse(localtime.DateLayout, from); err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, domain.ErrBadRequest)
	}
	if _, err := time.Parse(localtime.DateLayout, to); err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, domain.ErrBadRequest)
	}
	reminders, err := s.repo.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return domain.NewAdherenceReport(userID, from, to, reminders), nil
}
