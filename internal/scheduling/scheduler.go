package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/delsurprop/backoffice/internal/observability/metrics"
	"github.com/delsurprop/backoffice/pkg/logging"
)

var tracer = otel.Tracer("backoffice.internal.scheduling")

// Scheduler validates and commits visit bookings against the business-hours
// rule and per-agent conflict constraints. It is stateless between calls;
// all state lives in the Store.
type Scheduler struct {
	store    Store
	dir      Directory
	hours    *BusinessHours
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewScheduler wires the scheduler with its collaborators.
func NewScheduler(store Store, dir Directory, hours *BusinessHours, logger *logging.Logger) *Scheduler {
	if store == nil {
		panic("scheduling: store required")
	}
	if dir == nil {
		panic("scheduling: directory required")
	}
	if hours == nil {
		hours = NewBusinessHours(time.UTC, nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		store:  store,
		dir:    dir,
		hours:  hours,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNotifier attaches a best-effort notifier. Its failures never fail a
// booking.
func (s *Scheduler) WithNotifier(n Notifier) *Scheduler {
	s.notifier = n
	return s
}

// WithMetrics attaches booking outcome counters.
func (s *Scheduler) WithMetrics(m *metrics.BookingMetrics) *Scheduler {
	s.metrics = m
	return s
}

// WithClock overrides the time source, for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	if now != nil {
		s.now = now
	}
	return s
}

// Book runs the full validation pipeline and persists the visit. Expected
// failures come back as typed errors (ValidationError, BusinessHoursError,
// ConflictError, NotFoundError); anything else is an infrastructure fault.
func (s *Scheduler) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "scheduling.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("backoffice.agent_id", req.AgentID.String()),
		attribute.String("backoffice.property_id", req.PropertyID.String()),
	)

	if err := req.validate(); err != nil {
		return nil, s.reject(err)
	}
	if req.ScheduledAt.Before(s.now()) {
		return nil, s.reject(&ValidationError{
			Field:  "scheduled_at",
			Reason: "cannot schedule a visit in the past",
		})
	}
	if err := s.hours.CheckInstant(req.ScheduledAt); err != nil {
		return nil, s.reject(err)
	}
	if err := s.hours.CheckSpan(req.ScheduledAt, req.span()); err != nil {
		return nil, s.reject(err)
	}

	conflict, err := s.findConflict(ctx, req.AgentID, req.ScheduledAt, req.span(), uuid.Nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if conflict != nil {
		return nil, s.reject(conflict)
	}

	prop, client, agent, err := s.resolveReferences(ctx, req.PropertyID, req.ClientID, req.AgentID)
	if err != nil {
		return nil, s.reject(err)
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}
	now := s.now()
	appt := &Appointment{
		ID:          uuid.New(),
		PropertyID:  req.PropertyID,
		ClientID:    req.ClientID,
		AgentID:     req.AgentID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Duration:    req.Duration,
		Status:      status,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// Lost the race to a concurrent booking; report it like any
			// other conflict, with detail when a fresh scan finds it.
			return nil, s.reject(s.conflictDetail(ctx, appt))
		}
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: create appointment: %w", err)
	}

	s.metrics.ObserveBooked(string(appt.Status))
	s.logger.Info("visit booked",
		"appointment_id", appt.ID,
		"agent_id", appt.AgentID,
		"scheduled_at", appt.ScheduledAt,
		"duration_minutes", appt.Duration,
	)

	s.dispatchNotification(ctx, appt, prop, client, agent, false)
	return appt, nil
}

// Update loads the appointment, merges the supplied fields, re-validates
// what changed and persists the result. Time, duration or agent changes
// re-run the business-hours and conflict checks with the visit's own id
// excluded from the scan.
func (s *Scheduler) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "scheduling.update")
	defer span.End()
	span.SetAttributes(attribute.String("backoffice.appointment_id", id.String()))

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.reject(&NotFoundError{Entity: "appointment", ID: id.String()})
		}
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: load appointment: %w", err)
	}

	next := *existing
	if req.PropertyID != nil {
		next.PropertyID = *req.PropertyID
	}
	if req.ClientID != nil {
		next.ClientID = *req.ClientID
	}
	if req.AgentID != nil {
		next.AgentID = *req.AgentID
	}
	if req.ScheduledAt != nil {
		next.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.Duration != nil {
		if *req.Duration < MinDurationMinutes || *req.Duration > MaxDurationMinutes {
			return nil, s.reject(&ValidationError{
				Field:  "duration_minutes",
				Reason: "must be between 15 and 480 minutes",
			})
		}
		next.Duration = *req.Duration
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, s.reject(&ValidationError{Field: "status", Reason: "unknown status"})
		}
		next.Status = *req.Status
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}

	timeChanged := req.ScheduledAt != nil || req.Duration != nil
	if timeChanged || req.AgentID != nil {
		if err := s.hours.CheckInstant(next.ScheduledAt); err != nil {
			return nil, s.reject(err)
		}
		if err := s.hours.CheckSpan(next.ScheduledAt, next.Span()); err != nil {
			return nil, s.reject(err)
		}
		conflict, err := s.findConflict(ctx, next.AgentID, next.ScheduledAt, next.Span(), next.ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if conflict != nil {
			return nil, s.reject(conflict)
		}
	}

	// Only changed references need to resolve again.
	if req.PropertyID != nil || req.ClientID != nil || req.AgentID != nil {
		if _, _, _, err := s.resolveReferences(ctx, next.PropertyID, next.ClientID, next.AgentID); err != nil {
			return nil, s.reject(err)
		}
	}

	next.UpdatedAt = s.now()
	if err := s.store.Update(ctx, &next); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, s.reject(&NotFoundError{Entity: "appointment", ID: id.String()})
		case errors.Is(err, ErrSlotTaken):
			return nil, s.reject(s.conflictDetail(ctx, &next))
		}
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: update appointment: %w", err)
	}

	s.logger.Info("visit updated", "appointment_id", next.ID, "time_changed", timeChanged)

	if timeChanged {
		prop, client, agent, err := s.resolveReferences(ctx, next.PropertyID, next.ClientID, next.AgentID)
		if err == nil {
			s.dispatchNotification(ctx, &next, prop, client, agent, true)
		} else {
			s.logger.Warn("skipping reschedule notification", "error", err, "appointment_id", next.ID)
		}
	}
	return &next, nil
}

// Delete removes the appointment outright. No cascading validation.
func (s *Scheduler) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "scheduling.delete")
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Entity: "appointment", ID: id.String()}
		}
		span.RecordError(err)
		return fmt.Errorf("scheduling: delete appointment: %w", err)
	}
	s.logger.Info("visit deleted", "appointment_id", id)
	return nil
}

// Get returns a single appointment by id.
func (s *Scheduler) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Entity: "appointment", ID: id.String()}
		}
		return nil, fmt.Errorf("scheduling: load appointment: %w", err)
	}
	return appt, nil
}

// AgentDay lists the agent's visits on the calendar day containing t, in the
// business timezone.
func (s *Scheduler) AgentDay(ctx context.Context, agentID uuid.UUID, t time.Time) ([]AgentVisit, error) {
	from, to := s.hours.DayBounds(t)
	visits, err := s.store.ListByAgentBetween(ctx, agentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list agent day: %w", err)
	}
	return visits, nil
}

// resolveReferences checks that the three foreign keys point at real records
// and returns their display refs, failing with a NotFoundError naming
// whichever is missing.
func (s *Scheduler) resolveReferences(ctx context.Context, propertyID, clientID, agentID uuid.UUID) (*PropertyRef, *ClientRef, *AgentRef, error) {
	prop, err := s.dir.Property(ctx, propertyID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scheduling: property lookup: %w", err)
	}
	if prop == nil {
		return nil, nil, nil, &NotFoundError{Entity: "property", ID: propertyID.String()}
	}
	client, err := s.dir.Client(ctx, clientID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scheduling: client lookup: %w", err)
	}
	if client == nil {
		return nil, nil, nil, &NotFoundError{Entity: "client", ID: clientID.String()}
	}
	agent, err := s.dir.Agent(ctx, agentID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scheduling: agent lookup: %w", err)
	}
	if agent == nil {
		return nil, nil, nil, &NotFoundError{Entity: "agent", ID: agentID.String()}
	}
	return prop, client, agent, nil
}

// conflictDetail rebuilds the collision detail after the store reported a
// taken slot. Falls back to a bare conflict when the scan comes up empty.
func (s *Scheduler) conflictDetail(ctx context.Context, appt *Appointment) *ConflictError {
	conflict, err := s.findConflict(ctx, appt.AgentID, appt.ScheduledAt, appt.Span(), appt.ID)
	if err == nil && conflict != nil {
		return conflict
	}
	return &ConflictError{StartsAt: appt.ScheduledAt.In(s.hours.Location())}
}

// reject records the outcome metric for an expected failure before passing
// it through.
func (s *Scheduler) reject(err error) error {
	switch err.(type) {
	case *ValidationError:
		s.metrics.ObserveRejected("validation")
	case *BusinessHoursError:
		s.metrics.ObserveRejected("business_hours")
	case *ConflictError:
		s.metrics.ObserveRejected("conflict")
	case *NotFoundError:
		s.metrics.ObserveRejected("not_found")
	}
	return err
}
