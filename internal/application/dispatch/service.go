package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/med-reminder-api/internal/domain"
	"github.com/med-reminder-api/internal/pkg/localtime"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ReminderSource is the slice of the reminder store the engine needs.
type ReminderSource interface {
	ListEligible(ctx context.Context, pageSize int32) ([]domain.Reminder, error)
	MarkNotified(ctx context.Context, reminderID string) error
}

// DestinationSource lists registered push destinations.
type DestinationSource interface {
	List(ctx context.Context, pageSize int32) ([]domain.Destination, error)
}

// PushSender delivers one message to one address.
type PushSender interface {
	SendPush(ctx context.Context, to string, msg domain.PushMessage) (status int, body string, err error)
}

// ReportArchiver persists run reports for audit.
type ReportArchiver interface {
	Archive(ctx context.Context, report *domain.RunReport) error
}

// Options tune one engine instance. Zero values get sensible defaults.
type Options struct {
	PageSize    int32         // bulk-read page size
	Timeout     time.Duration // per-run deadline; expiry yields a partial report, not an error
	Concurrency int           // parallel sends per run
	QPS         float64       // sustained transport rate; 0 disables limiting
	Burst       int
}

// Service is the reminder dispatch engine. One Run scans due reminders
// across all users, matches them against registered destinations in each
// user's local time frame, and sends one notification per match.
type Service struct {
	reminders    ReminderSource
	destinations DestinationSource
	sender       PushSender
	archiver     ReportArchiver // optional
	limiter      *rate.Limiter
	opt          Options

	now func() time.Time // injectable clock for tests
}

func NewService(reminders ReminderSource, destinations DestinationSource, sender PushSender, archiver ReportArchiver, opt Options) *Service {
	if opt.PageSize <= 0 {
		opt.PageSize = 100
	}
	if opt.Concurrency <= 0 {
		opt.Concurrency = 8
	}
	s := &Service{
		reminders:    reminders,
		destinations: destinations,
		sender:       sender,
		archiver:     archiver,
		opt:          opt,
		now:          time.Now,
	}
	if opt.QPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opt.QPS), max(opt.Burst, 1))
	}
	return s
}

// Start runs the engine on a fixed cadence until ctx is cancelled. The first
// pass fires immediately — a ticker doesn't fire until the period has elapsed.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	log.Printf("dispatch ticker started (interval=%s)", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.Run(ctx); err != nil {
		log.Printf("dispatch run failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("dispatch ticker stopped")
			return
		case <-ticker.C:
		}
		if _, err := s.Run(ctx); err != nil {
			log.Printf("dispatch run failed: %v", err)
		}
	}
}

// Run executes one dispatch pass. It returns an error only when a bulk read
// fails outright; per-destination and per-send failures are isolated and
// recorded in the report. The notification_send guard is best-effort, so two
// overlapping runs inside the same matching minute may both send — accepted
// at-least-once behavior, bounded to one duplicate per overlap.
func (s *Service) Run(ctx context.Context) (*domain.RunReport, error) {
	started := s.now()
	if s.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opt.Timeout)
		defer cancel()
	}

	// The two bulk reads have no ordering dependency; issue them together.
	var (
		dests []domain.Destination
		rems  []domain.Reminder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dests, err = s.destinations.List(gctx, s.opt.PageSize)
		if err != nil {
			return fmt.Errorf("list destinations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rems, err = s.reminders.ListEligible(gctx, s.opt.PageSize)
		if err != nil {
			return fmt.Errorf("list eligible reminders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byUser := groupByUser(rems)
	now := s.now()

	var (
		mu      sync.Mutex
		results []domain.DispatchResult
	)
	sendGrp := &errgroup.Group{}
	sendGrp.SetLimit(s.opt.Concurrency)

	for _, dest := range dests {
		// Malformed registration: nothing to attempt, skip and keep going.
		if dest.UserID == "" || dest.Token == "" {
			log.Printf("skipping malformed destination (user=%q)", dest.UserID)
			continue
		}

		date, clock := localtime.Resolve(now, dest.Timezone)

		for _, rem := range byUser[dest.UserID] {
			// Exact string equality on the zero-padded formats; a reminder
			// off by a minute waits for a later tick.
			if rem.Date != date || rem.Time != clock {
				continue
			}
			dest, rem := dest, rem
			sendGrp.Go(func() error {
				res := s.sendOne(ctx, dest, rem)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = sendGrp.Wait()

	report := &domain.RunReport{
		Success:    true,
		TotalSent:  len(results),
		Results:    results,
		StartedAt:  started,
		FinishedAt: s.now(),
	}

	if s.archiver != nil {
		// The run deadline must not lose the audit trail of sends already made.
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.archiver.Archive(actx, report); err != nil {
			log.Printf("archiving run report failed: %v", err)
		}
	}

	log.Printf("dispatch run complete: %d sends attempted", report.TotalSent)
	return report, nil
}

func (s *Service) sendOne(ctx context.Context, dest domain.Destination, rem domain.Reminder) domain.DispatchResult {
	res := domain.DispatchResult{
		To:         dest.Token,
		UserID:     dest.UserID,
		ReminderID: rem.ReminderID,
	}

	// A deployment without a working transport still runs and reports; the
	// match is recorded as a failed send instead of dereferencing nil.
	if s.sender == nil {
		log.Printf("push send skipped (user=%s reminder=%s): no sender configured", dest.UserID, rem.ReminderID)
		res.Error = "push sender not configured"
		return res
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	status, body, err := s.sender.SendPush(ctx, dest.Token, BuildPushMessage(rem))
	if err != nil {
		log.Printf("push send failed (user=%s reminder=%s): %v", dest.UserID, rem.ReminderID, err)
		res.Error = err.Error()
		return res
	}
	res.Status = status
	res.Response = body

	if res.OK() {
		if err := s.reminders.MarkNotified(ctx, rem.ReminderID); err != nil {
			log.Printf("marking reminder %s notified failed: %v", rem.ReminderID, err)
		}
	}
	return res
}

// groupByUser maps user id to that user's reminders, preserving input order.
// Records missing the fields the matcher needs are dropped here.
func groupByUser(rems []domain.Reminder) map[string][]domain.Reminder {
	byUser := make(map[string][]domain.Reminder)
	for _, rem := range rems {
		if rem.UserID == "" || rem.Time == "" || rem.Date == "" {
			continue
		}
		byUser[rem.UserID] = append(byUser[rem.UserID], rem)
	}
	return byUser
}

// BuildPushMessage assembles the notification payload for one due reminder.
// The data section mirrors what the mobile response handler needs to apply
// taken/snooze without another read.
func BuildPushMessage(rem domain.Reminder) domain.PushMessage {
	description := rem.Description
	if description == "" {
		description = "It's time for your medication!"
	}
	dose := rem.Dose
	if dose == "" {
		dose = "1"
	}
	body := fmt.Sprintf("%s\nDose: %s\nFrequency: %s\nTime: %s\nTap to mark as taken or snooze",
		description, dose, rem.Frequency, rem.Time)
	return domain.PushMessage{
		Title: "Time to take " + rem.MedicineName,
		Body:  body,
		Sound: "default",
		Data: domain.PushMessageData{
			ReminderID:   rem.ReminderID,
			Time:         rem.Time,
			MedicineName: rem.MedicineName,
			Description:  rem.Description,
		},
	}
}
