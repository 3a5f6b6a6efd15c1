package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether an appointment in this status blocks the agent's
// calendar. Completed and cancelled visits never conflict.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Visit duration bounds, in minutes.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// Appointment is a scheduled property visit.
type Appointment struct {
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"property_id"`
	ClientID    uuid.UUID `json:"client_id"`
	AgentID     uuid.UUID `json:"agent_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration_minutes"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Span returns the visit duration as a time.Duration.
func (a *Appointment) Span() time.Duration {
	return time.Duration(a.Duration) * time.Minute
}

// End returns the instant the visit finishes. The interval is half-open:
// [ScheduledAt, End).
func (a *Appointment) End() time.Time {
	return a.ScheduledAt.Add(a.Span())
}

// AgentVisit is an appointment enriched with the display fields the conflict
// detector reports on collision.
type AgentVisit struct {
	Appointment
	ClientName    string
	PropertyTitle string
}

// BookRequest carries everything needed to create a visit.
type BookRequest struct {
	PropertyID  uuid.UUID
	ClientID    uuid.UUID
	AgentID     uuid.UUID
	ScheduledAt time.Time
	Duration    int
	Status      Status // optional, defaults to pending
	Notes       string
}

func (r *BookRequest) span() time.Duration {
	return time.Duration(r.Duration) * time.Minute
}

func (r *BookRequest) validate() error {
	if r.PropertyID == uuid.Nil {
		return &ValidationError{Field: "property_id", Reason: "is required"}
	}
	if r.ClientID == uuid.Nil {
		return &ValidationError{Field: "client_id", Reason: "is required"}
	}
	if r.AgentID == uuid.Nil {
		return &ValidationError{Field: "agent_id", Reason: "is required"}
	}
	if r.ScheduledAt.IsZero() {
		return &ValidationError{Field: "scheduled_at", Reason: "is required"}
	}
	if r.Duration < MinDurationMinutes || r.Duration > MaxDurationMinutes {
		return &ValidationError{
			Field:  "duration_minutes",
			Reason: "must be between 15 and 480 minutes",
		}
	}
	if r.Status != "" && !r.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

// UpdateRequest carries a partial change set. Nil fields keep their current
// value. Changing the time, duration or agent re-runs the business-hours and
// conflict checks; status changes do not.
type UpdateRequest struct {
	PropertyID  *uuid.UUID
	ClientID    *uuid.UUID
	AgentID     *uuid.UUID
	ScheduledAt *time.Time
	Duration    *int
	Status      *Status
	Notes       *string
}
