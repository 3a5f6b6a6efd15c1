package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types written to the outbox.
const (
	TypeVisitBooked      = "visit.booked"
	TypeVisitRescheduled = "visit.rescheduled"
)

// VisitBookedV1 is the outbox payload for a booked or rescheduled visit.
type VisitBookedV1 struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	PropertyTitle   string    `json:"property_title"`
	PropertyAddress string    `json:"property_address"`
	ClientName      string    `json:"client_name"`
	ClientEmail     string    `json:"client_email"`
	AgentName       string    `json:"agent_name"`
	AgentEmail      string    `json:"agent_email"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	Rescheduled     bool      `json:"rescheduled"`
	OccurredAt      time.Time `json:"occurred_at"`
}
