package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/med-reminder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeReminderStore struct {
	mu            sync.Mutex
	reminders     []domain.Reminder
	notified      []string
	reflectWrites bool // when true, MarkNotified is visible to later ListEligible calls
	listErr       error
}

func (f *fakeReminderStore) ListEligible(_ context.Context, _ int32) ([]domain.Reminder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reminder
	for _, r := range f.reminders {
		if r.Eligible() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) MarkNotified(_ context.Context, reminderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, reminderID)
	if f.reflectWrites {
		for i := range f.reminders {
			if f.reminders[i].ReminderID == reminderID {
				f.reminders[i].NotificationSend = true
			}
		}
	}
	return nil
}

type fakeDestinationStore struct {
	dests   []domain.Destination
	listErr error
}

func (f *fakeDestinationStore) List(_ context.Context, _ int32) ([]domain.Destination, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.dests, nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []domain.PushMessage
	failFor map[string]error // keyed by reminder id
}

func (f *fakeSender) SendPush(_ context.Context, _ string, msg domain.PushMessage) (int, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if err, ok := f.failFor[msg.Data.ReminderID]; ok {
		return 0, "", err
	}
	return 200, "ok", nil
}

func (f *fakeSender) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		ids = append(ids, m.Data.ReminderID)
	}
	return ids
}

type fakeArchive struct {
	mu      sync.Mutex
	reports []*domain.RunReport
	err     error
}

func (f *fakeArchive) Archive(_ context.Context, report *domain.RunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return f.err
}

// --- helpers ---

func newTestService(rs *fakeReminderStore, ds *fakeDestinationStore, sender *fakeSender, archiver ReportArchiver, at time.Time) *Service {
	svc := NewService(rs, ds, sender, archiver, Options{Concurrency: 4})
	svc.now = func() time.Time { return at }
	return svc
}

func pendingReminder(id, userID, date, clock string) domain.Reminder {
	return domain.Reminder{
		ReminderID:   id,
		UserID:       userID,
		MedicineName: "Aspirin",
		Date:         date,
		Time:         clock,
	}
}

// --- tests ---

func TestRun_SendsOnlyExactMinuteMatches(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("early", "u1", "2024-06-15", "09:29"),
		pendingReminder("due", "u1", "2024-06-15", "09:30"),
		pendingReminder("late", "u1", "2024-06-15", "09:31"),
		pendingReminder("wrong-date", "u1", "2024-06-16", "09:30"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "u1", Token: "tok1", Timezone: "UTC"},
	}}
	sender := &fakeSender{}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 1, report.TotalSent)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "due", report.Results[0].ReminderID)
	assert.Equal(t, "tok1", report.Results[0].To)
	assert.Equal(t, "u1", report.Results[0].UserID)
	assert.Equal(t, 200, report.Results[0].Status)
	assert.Equal(t, []string{"due"}, rs.notified)
}

func TestRun_MatchesInDestinationLocalFrame(t *testing.T) {
	// 12:00 UTC is 08:00 in New York (EDT) and 21:00 in Tokyo.
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("ny", "alice", "2024-06-15", "08:00"),
		pendingReminder("tokyo", "bob", "2024-06-15", "21:00"),
		pendingReminder("utc-clock", "carol", "2024-06-15", "08:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "alice", Token: "tok-a", Timezone: "America/New_York"},
		{UserID: "bob", Token: "tok-b", Timezone: "Asia/Tokyo"},
		{UserID: "carol", Token: "tok-c", Timezone: "UTC"}, // 08:00 stored, 12:00 local: no match
	}}
	sender := &fakeSender{}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalSent)
	assert.ElementsMatch(t, []string{"ny", "tokyo"}, sender.sentIDs())
}

func TestRun_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("r1", "u1", "2024-06-15", "12:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "u1", Token: "tok1", Timezone: "Not/AZone"},
	}}
	sender := &fakeSender{}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalSent)
}

func TestRun_SkipsMalformedDestinations(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("r1", "u1", "2024-06-15", "09:00"),
		pendingReminder("r2", "u2", "2024-06-15", "09:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "", Token: "tok-anon", Timezone: "UTC"},
		{UserID: "u1", Token: "", Timezone: "UTC"},
		{UserID: "u2", Token: "tok2", Timezone: "UTC"},
	}}
	sender := &fakeSender{}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)

	// The malformed rows are skipped without aborting the run or producing results.
	assert.Equal(t, 1, report.TotalSent)
	assert.Equal(t, []string{"r2"}, sender.sentIDs())
}

func TestRun_SkipsMalformedReminders(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		{ReminderID: "no-user", Date: "2024-06-15", Time: "09:00"},
		{ReminderID: "no-time", UserID: "u1", Date: "2024-06-15"},
		{ReminderID: "no-date", UserID: "u1", Time: "09:00"},
		pendingReminder("ok", "u1", "2024-06-15", "09:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "u1", Token: "tok1", Timezone: "UTC"},
	}}
	sender := &fakeSender{}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, sender.sentIDs())
	assert.Equal(t, 1, report.TotalSent)
}

func TestRun_TransportFailureDoesNotStopOtherSends(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("fails", "u1", "2024-06-15", "09:00"),
		pendingReminder("ok-same-user", "u1", "2024-06-15", "09:00"),
		pendingReminder("ok-other-user", "u2", "2024-06-15", "09:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "u1", Token: "tok1", Timezone: "UTC"},
		{UserID: "u2", Token: "tok2", Timezone: "UTC"},
	}}
	sender := &fakeSender{failFor: map[string]error{"fails": errors.New("device not registered")}}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)

	// All three attempts recorded, including the failure.
	assert.Equal(t, 3, report.TotalSent)
	assert.ElementsMatch(t, []string{"fails", "ok-same-user", "ok-other-user"}, sender.sentIDs())

	var failed, succeeded int
	for _, res := range report.Results {
		if res.OK() {
			succeeded++
		} else {
			failed++
			assert.Equal(t, "fails", res.ReminderID)
			assert.Contains(t, res.Error, "device not registered")
		}
	}
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)

	// Only successful sends get the notification_send mark.
	assert.ElementsMatch(t, []string{"ok-same-user", "ok-other-user"}, rs.notified)
}

func TestRun_BulkReadFailureIsFatal(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	sender := &fakeSender{}

	t.Run("reminder read fails", func(t *testing.T) {
		rs := &fakeReminderStore{listErr: errors.New("store unreachable")}
		ds := &fakeDestinationStore{dests: []domain.Destination{{UserID: "u1", Token: "tok1"}}}
		report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
		require.Error(t, err)
		assert.Nil(t, report)
		assert.ErrorContains(t, err, "store unreachable")
	})

	t.Run("destination read fails", func(t *testing.T) {
		rs := &fakeReminderStore{}
		ds := &fakeDestinationStore{listErr: errors.New("store unreachable")}
		report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
		require.Error(t, err)
		assert.Nil(t, report)
	})

	assert.Empty(t, sender.sent, "no sends may be attempted when a bulk read fails")
}

// Two runs inside the same matching minute, with the notification_send
// write-back not yet visible between them, both send. That is the documented
// at-least-once behavior of the best-effort guard, not a bug to fix here.
func TestRun_OverlappingRunsMayDoubleSend(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{
		reminders:     []domain.Reminder{pendingReminder("r1", "u1", "2024-06-15", "09:00")},
		reflectWrites: false, // simulate the lagging store
	}
	ds := &fakeDestinationStore{dests: []domain.Destination{{UserID: "u1", Token: "tok1", Timezone: "UTC"}}}
	sender := &fakeSender{}
	svc := newTestService(rs, ds, sender, nil, now)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"r1", "r1"}, sender.sentIDs())
}

func TestRun_GuardSuppressesResendOnceWriteBackLands(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{
		reminders:     []domain.Reminder{pendingReminder("r1", "u1", "2024-06-15", "09:00")},
		reflectWrites: true,
	}
	ds := &fakeDestinationStore{dests: []domain.Destination{{UserID: "u1", Token: "tok1", Timezone: "UTC"}}}
	sender := &fakeSender{}
	svc := newTestService(rs, ds, sender, nil, now)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, sender.sentIDs())
}

// A service wired without a transport (SNS unavailable at startup) must keep
// running: the match becomes a failed result, never a nil dereference inside
// the send goroutines.
func TestRun_NoSenderRecordsFailureInsteadOfPanicking(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("r1", "u1", "2024-06-15", "09:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{{UserID: "u1", Token: "tok1", Timezone: "UTC"}}}

	svc := NewService(rs, ds, nil, nil, Options{Concurrency: 4})
	svc.now = func() time.Time { return now }

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].OK())
	assert.Contains(t, report.Results[0].Error, "push sender not configured")
	assert.Empty(t, rs.notified, "an unsent reminder must stay eligible")
}

func TestRun_TakenReminderExcludedFromDueSet(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	taken := pendingReminder("taken", "u1", "2024-06-15", "09:00")
	taken.Taken = true
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		taken,
		pendingReminder("due", "u1", "2024-06-15", "09:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{{UserID: "u1", Token: "tok1", Timezone: "UTC"}}}
	sender := &fakeSender{}

	report, err := newTestService(rs, ds, sender, nil, now).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"due"}, sender.sentIDs())
	assert.Equal(t, 1, report.TotalSent)
}

// 2024-03-10 02:30 does not exist in America/New_York (spring forward).
// Sweeping every minute of the UTC day, the reminder must never match.
func TestRun_NonexistentLocalTimeNeverMatches(t *testing.T) {
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("ghost", "u1", "2024-03-10", "02:30"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{
		{UserID: "u1", Token: "tok1", Timezone: "America/New_York"},
	}}
	sender := &fakeSender{}
	svc := newTestService(rs, ds, sender, nil, time.Time{})

	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24*60; i++ {
		instant := start.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return instant }
		_, err := svc.Run(context.Background())
		require.NoError(t, err)
	}

	assert.Empty(t, sender.sent, "a reminder at a skipped local time must never be dispatched")
}

func TestRun_ArchivesReport(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{reminders: []domain.Reminder{
		pendingReminder("r1", "u1", "2024-06-15", "09:00"),
	}}
	ds := &fakeDestinationStore{dests: []domain.Destination{{UserID: "u1", Token: "tok1", Timezone: "UTC"}}}
	sender := &fakeSender{}
	archive := &fakeArchive{}

	report, err := newTestService(rs, ds, sender, archive, now).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, archive.reports, 1)
	assert.Equal(t, report, archive.reports[0])
}

func TestRun_ArchiveFailureDoesNotFailRun(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	rs := &fakeReminderStore{}
	ds := &fakeDestinationStore{}
	archive := &fakeArchive{err: errors.New("bucket gone")}

	report, err := newTestService(rs, ds, &fakeSender{}, archive, now).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Success)
}

func TestBuildPushMessage(t *testing.T) {
	rem := domain.Reminder{
		ReminderID:   "r1",
		MedicineName: "Aspirin",
		Description:  "after breakfast",
		Dose:         "2",
		Frequency:    "Twice a day",
		Time:         "09:00",
	}
	msg := BuildPushMessage(rem)
	assert.Equal(t, "Time to take Aspirin", msg.Title)
	assert.Contains(t, msg.Body, "after breakfast")
	assert.Contains(t, msg.Body, "Dose: 2")
	assert.Contains(t, msg.Body, "Twice a day")
	assert.Equal(t, "default", msg.Sound)
	assert.Equal(t, "r1", msg.Data.ReminderID)
	assert.Equal(t, "09:00", msg.Data.Time)
	assert.Equal(t, "Aspirin", msg.Data.MedicineName)
}

func TestBuildPushMessage_Defaults(t *testing.T) {
	msg := BuildPushMessage(domain.Reminder{ReminderID: "r1", MedicineName: "Aspirin", Time: "09:00"})
	assert.Contains(t, msg.Body, "It's time for your medication!")
	assert.Contains(t, msg.Body, "Dose: 1")
	assert.Empty(t, msg.Data.Description)
}
