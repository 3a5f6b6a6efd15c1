package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VisitNotification carries everything the notifier needs to build a
// calendar invite and confirmation emails.
type VisitNotification struct {
	AppointmentID   uuid.UUID
	PropertyTitle   string
	PropertyAddress string
	ClientName      string
	ClientEmail     string
	AgentName       string
	AgentEmail      string
	ScheduledAt     time.Time
	Duration        int
	Notes           string
	Rescheduled     bool
}

// Notifier delivers visit notifications. Implementations are best-effort
// from the scheduler's perspective: returned errors are logged, never
// propagated to the booking outcome.
type Notifier interface {
	VisitBooked(ctx context.Context, n VisitNotification) error
}

// dispatchNotification fires the best-effort notification when both contact
// emails are on file. Failures are logged and swallowed so they can never
// roll back or fail the booking.
func (s *Scheduler) dispatchNotification(ctx context.Context, appt *Appointment, prop *PropertyRef, client *ClientRef, agent *AgentRef, rescheduled bool) {
	if s.notifier == nil {
		return
	}
	if client.Email == "" || agent.Email == "" {
		s.logger.Debug("skipping visit notification, missing contact email",
			"appointment_id", appt.ID)
		return
	}

	n := VisitNotification{
		AppointmentID:   appt.ID,
		PropertyTitle:   prop.Title,
		PropertyAddress: prop.Address,
		ClientName:      client.Name,
		ClientEmail:     client.Email,
		AgentName:       agent.Name,
		AgentEmail:      agent.Email,
		ScheduledAt:     appt.ScheduledAt,
		Duration:        appt.Duration,
		Notes:           appt.Notes,
		Rescheduled:     rescheduled,
	}
	if err := s.notifier.VisitBooked(ctx, n); err != nil {
		s.logger.Error("visit notification failed", "error", err, "appointment_id", appt.ID)
	}
}
