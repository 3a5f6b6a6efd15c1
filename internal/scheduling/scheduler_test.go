package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/delsurprop/backoffice/pkg/logging"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []VisitNotification
	err  error
}

func (n *recordingNotifier) VisitBooked(ctx context.Context, v VisitNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, v)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fixture struct {
	scheduler *Scheduler
	store     *MemoryStore
	dir       *StaticDirectory
	notifier  *recordingNotifier
	loc       *time.Location

	propertyID uuid.UUID
	clientID   uuid.UUID
	agentID    uuid.UUID
}

// now is fixed to Sunday 2026-03-01 12:00 UTC so Monday 2026-03-02 is always
// in the future.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc := buenosAires(t)

	f := &fixture{
		dir:        NewStaticDirectory(),
		notifier:   &recordingNotifier{},
		loc:        loc,
		propertyID: uuid.New(),
		clientID:   uuid.New(),
		agentID:    uuid.New(),
	}
	f.store = NewMemoryStore(f.dir)
	f.dir.AddProperty(PropertyRef{ID: f.propertyID, Title: "PH en Palermo", Address: "Gorriti 4800"})
	f.dir.AddClient(ClientRef{ID: f.clientID, Name: "Marta Quiroga", Email: "marta@example.com"})
	f.dir.AddAgent(AgentRef{ID: f.agentID, Name: "Julián Paredes", Email: "julian@delsurprop.example"})

	f.scheduler = NewScheduler(f.store, f.dir, NewBusinessHours(loc, nil), logging.Default()).
		WithNotifier(f.notifier).
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })
	return f
}

func (f *fixture) bookRequest(at time.Time, minutes int) BookRequest {
	return BookRequest{
		PropertyID:  f.propertyID,
		ClientID:    f.clientID,
		AgentID:     f.agentID,
		ScheduledAt: at,
		Duration:    minutes,
	}
}

func TestBookSuccess(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc)

	appt, err := f.scheduler.Book(context.Background(), f.bookRequest(at, 45))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if appt.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if appt.Status != StatusPending {
		t.Fatalf("expected default pending status, got %s", appt.Status)
	}

	stored, err := f.store.FindByID(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("stored appointment not found: %v", err)
	}
	if !stored.ScheduledAt.Equal(at) {
		t.Fatalf("stored time %s does not match %s", stored.ScheduledAt, at)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", f.notifier.count())
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc)

	tests := []struct {
		name   string
		mutate func(*BookRequest)
		field  string
	}{
		{"missing property", func(r *BookRequest) { r.PropertyID = uuid.Nil }, "property_id"},
		{"missing client", func(r *BookRequest) { r.ClientID = uuid.Nil }, "client_id"},
		{"missing agent", func(r *BookRequest) { r.AgentID = uuid.Nil }, "agent_id"},
		{"zero time", func(r *BookRequest) { r.ScheduledAt = time.Time{} }, "scheduled_at"},
		{"duration too short", func(r *BookRequest) { r.Duration = 10 }, "duration_minutes"},
		{"duration too long", func(r *BookRequest) { r.Duration = 481 }, "duration_minutes"},
		{"bad status", func(r *BookRequest) { r.Status = "maybe" }, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.bookRequest(at, 45)
			tt.mutate(&req)
			_, err := f.scheduler.Book(context.Background(), req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestBookRejectsPastDates(t *testing.T) {
	f := newFixture(t)
	// Friday 2026-02-27 10:00 is inside business hours but before "now".
	at := time.Date(2026, 2, 27, 10, 0, 0, 0, f.loc)

	_, err := f.scheduler.Book(context.Background(), f.bookRequest(at, 45))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "scheduled_at" {
		t.Fatalf("expected past-date validation error, got %v", err)
	}
}

func TestBookRejectsSundays(t *testing.T) {
	f := newFixture(t)
	for _, hour := range []int{0, 9, 11, 18, 23} {
		at := time.Date(2026, 3, 8, hour, 0, 0, 0, f.loc)
		_, err := f.scheduler.Book(context.Background(), f.bookRequest(at, 30))
		var be *BusinessHoursError
		if !errors.As(err, &be) {
			t.Fatalf("Sunday %02d:00: expected BusinessHoursError, got %v", hour, err)
		}
	}
}

func TestBookRejectsWindowOverflow(t *testing.T) {
	f := newFixture(t)
	// Friday 2026-03-06 20:00; the office closes at 20:30.
	at := time.Date(2026, 3, 6, 20, 0, 0, 0, f.loc)

	_, err := f.scheduler.Book(context.Background(), f.bookRequest(at, 45))
	var be *BusinessHoursError
	if !errors.As(err, &be) {
		t.Fatalf("expected BusinessHoursError for overflowing visit, got %v", err)
	}

	if _, err := f.scheduler.Book(context.Background(), f.bookRequest(at, 30)); err != nil {
		t.Fatalf("visit ending exactly at close should book: %v", err)
	}
}

func TestBookConflictScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Agent has a confirmed visit Monday 10:00-10:45.
	first := f.bookRequest(time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc), 45)
	first.Status = StatusConfirmed
	if _, err := f.scheduler.Book(ctx, first); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// 10:30-11:00 overlaps it.
	_, err := f.scheduler.Book(ctx, f.bookRequest(time.Date(2026, 3, 2, 10, 30, 0, 0, f.loc), 30))
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.ClientName != "Marta Quiroga" || ce.PropertyTitle != "PH en Palermo" {
		t.Fatalf("conflict should name the colliding visit, got %+v", ce)
	}
	if ce.StartsAt.Hour() != 10 || ce.StartsAt.Minute() != 0 {
		t.Fatalf("conflict should carry the colliding start, got %s", ce.StartsAt)
	}

	// 10:45-11:15 is back-to-back and must succeed.
	if _, err := f.scheduler.Book(ctx, f.bookRequest(time.Date(2026, 3, 2, 10, 45, 0, 0, f.loc), 30)); err != nil {
		t.Fatalf("back-to-back booking should succeed: %v", err)
	}
}

func TestBookDifferentAgentsNeverConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc)

	if _, err := f.scheduler.Book(ctx, f.bookRequest(at, 45)); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	other := uuid.New()
	f.dir.AddAgent(AgentRef{ID: other, Name: "Lucía Benítez", Email: "lucia@delsurprop.example"})
	req := f.bookRequest(at, 45)
	req.AgentID = other
	if _, err := f.scheduler.Book(ctx, req); err != nil {
		t.Fatalf("other agent should book the same slot: %v", err)
	}
}

func TestCancelledVisitsNeverConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc)

	appt, err := f.scheduler.Book(ctx, f.bookRequest(at, 45))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	cancelled := StatusCancelled
	if _, err := f.scheduler.Update(ctx, appt.ID, UpdateRequest{Status: &cancelled}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Literally the same slot for the same agent now books cleanly.
	if _, err := f.scheduler.Book(ctx, f.bookRequest(at, 45)); err != nil {
		t.Fatalf("cancelled visit should not block the slot: %v", err)
	}
}

func TestBookUnknownReferences(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc)

	tests := []struct {
		name   string
		mutate func(*BookRequest)
		entity string
	}{
		{"unknown property", func(r *BookRequest) { r.PropertyID = uuid.New() }, "property"},
		{"unknown client", func(r *BookRequest) { r.ClientID = uuid.New() }, "client"},
		{"unknown agent", func(r *BookRequest) { r.AgentID = uuid.New() }, "agent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.bookRequest(at, 45)
			tt.mutate(&req)
			_, err := f.scheduler.Book(context.Background(), req)
			var ne *NotFoundError
			if !errors.As(err, &ne) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
			if ne.Entity != tt.entity {
				t.Fatalf("expected entity %s, got %s", tt.entity, ne.Entity)
			}
		})
	}
}

func TestUpdateExcludesOwnSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.scheduler.Book(ctx, f.bookRequest(time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc), 45))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Shrinking the visit inside its own occupied slot must not
	// self-conflict.
	shorter := 30
	updated, err := f.scheduler.Update(ctx, appt.ID, UpdateRequest{Duration: &shorter})
	if err != nil {
		t.Fatalf("self-overlapping update should succeed: %v", err)
	}
	if updated.Duration != 30 {
		t.Fatalf("expected duration 30, got %d", updated.Duration)
	}

	// Nudging it by 15 minutes within the previously occupied range too.
	nudged := time.Date(2026, 3, 2, 10, 15, 0, 0, f.loc)
	if _, err := f.scheduler.Update(ctx, appt.ID, UpdateRequest{ScheduledAt: &nudged}); err != nil {
		t.Fatalf("nudge within own slot should succeed: %v", err)
	}
}

func TestUpdateRevalidatesTimeChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.scheduler.Book(ctx, f.bookRequest(time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc), 45))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, f.loc)
	_, err = f.scheduler.Update(ctx, appt.ID, UpdateRequest{ScheduledAt: &sunday})
	var be *BusinessHoursError
	if !errors.As(err, &be) {
		t.Fatalf("moving a visit to Sunday should fail, got %v", err)
	}

	tooLong := 600
	_, err = f.scheduler.Update(ctx, appt.ID, UpdateRequest{Duration: &tooLong})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "duration_minutes" {
		t.Fatalf("expected duration validation error, got %v", err)
	}
}

func TestUpdateStatusSkipsTimeChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed a visit directly in the store at a time that would no longer
	// validate (it is already in the past relative to the fixed clock).
	appt := &Appointment{
		ID:          uuid.New(),
		PropertyID:  f.propertyID,
		ClientID:    f.clientID,
		AgentID:     f.agentID,
		ScheduledAt: time.Date(2026, 2, 23, 13, 0, 0, 0, time.UTC),
		Duration:    45,
		Status:      StatusConfirmed,
	}
	if err := f.store.Create(ctx, appt); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	done := StatusCompleted
	updated, err := f.scheduler.Update(ctx, appt.ID, UpdateRequest{Status: &done})
	if err != nil {
		t.Fatalf("status-only update should skip time validation: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	if f.notifier.count() != 0 {
		t.Fatal("status-only update must not notify")
	}
}

func TestUpdateNotFound(t *testing.T) {
	f := newFixture(t)
	notes := "sin llaves"
	_, err := f.scheduler.Update(context.Background(), uuid.New(), UpdateRequest{Notes: &notes})
	var ne *NotFoundError
	if !errors.As(err, &ne) || ne.Entity != "appointment" {
		t.Fatalf("expected appointment NotFoundError, got %v", err)
	}
}

func TestUpdateNotifiesOnReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.scheduler.Book(ctx, f.bookRequest(time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc), 45))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected booking notification, got %d", f.notifier.count())
	}

	moved := time.Date(2026, 3, 3, 17, 0, 0, 0, f.loc)
	if _, err := f.scheduler.Update(ctx, appt.ID, UpdateRequest{ScheduledAt: &moved}); err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if f.notifier.count() != 2 {
		t.Fatalf("expected reschedule notification, got %d", f.notifier.count())
	}
	f.notifier.mu.Lock()
	last := f.notifier.sent[len(f.notifier.sent)-1]
	f.notifier.mu.Unlock()
	if !last.Rescheduled {
		t.Fatal("reschedule notification should be flagged as such")
	}
}

func TestNotificationSkippedWithoutEmails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	silent := uuid.New()
	f.dir.AddClient(ClientRef{ID: silent, Name: "Sin Correo"})
	req := f.bookRequest(time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc), 45)
	req.ClientID = silent

	if _, err := f.scheduler.Book(ctx, req); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if f.notifier.count() != 0 {
		t.Fatal("notification requires both contact emails")
	}
}

func TestNotifierFailureNeverFailsBooking(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc)
	appt, err := f.scheduler.Book(context.Background(), f.bookRequest(at, 45))
	if err != nil {
		t.Fatalf("booking must survive notifier failure: %v", err)
	}
	if _, err := f.store.FindByID(context.Background(), appt.ID); err != nil {
		t.Fatalf("booking should be persisted: %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.scheduler.Book(ctx, f.bookRequest(time.Date(2026, 3, 2, 10, 0, 0, 0, f.loc), 45))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	if err := f.scheduler.Delete(ctx, appt.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = f.scheduler.Get(ctx, appt.ID)
	var ne *NotFoundError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}

	err = f.scheduler.Delete(ctx, appt.ID)
	if !errors.As(err, &ne) {
		t.Fatalf("deleting twice should report not found, got %v", err)
	}
}

func TestAgentDayListsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	late := f.bookRequest(time.Date(2026, 3, 2, 17, 0, 0, 0, f.loc), 30)
	early := f.bookRequest(time.Date(2026, 3, 2, 9, 0, 0, 0, f.loc), 30)
	if _, err := f.scheduler.Book(ctx, late); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.scheduler.Book(ctx, early); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	visits, err := f.scheduler.AgentDay(ctx, f.agentID, time.Date(2026, 3, 2, 12, 0, 0, 0, f.loc))
	if err != nil {
		t.Fatalf("agent day failed: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}
	if !visits[0].ScheduledAt.Before(visits[1].ScheduledAt) {
		t.Fatal("visits should be ordered by start time")
	}
}
