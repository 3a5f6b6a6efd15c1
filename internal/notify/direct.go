package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/delsurprop/backoffice/internal/events"
	"github.com/delsurprop/backoffice/internal/scheduling"
)

// DirectNotifier sends visit emails inline, without the outbox. Used when
// the service runs without Postgres (dev, tests).
type DirectNotifier struct {
	mailer *VisitMailer
}

func NewDirectNotifier(mailer *VisitMailer) *DirectNotifier {
	return &DirectNotifier{mailer: mailer}
}

func (d *DirectNotifier) VisitBooked(ctx context.Context, v scheduling.VisitNotification) error {
	eventType := events.TypeVisitBooked
	if v.Rescheduled {
		eventType = events.TypeVisitRescheduled
	}
	payload, err := json.Marshal(events.VisitBookedV1{
		AppointmentID:   v.AppointmentID,
		PropertyTitle:   v.PropertyTitle,
		PropertyAddress: v.PropertyAddress,
		ClientName:      v.ClientName,
		ClientEmail:     v.ClientEmail,
		AgentName:       v.AgentName,
		AgentEmail:      v.AgentEmail,
		ScheduledAt:     v.ScheduledAt,
		DurationMinutes: v.Duration,
		Notes:           v.Notes,
		Rescheduled:     v.Rescheduled,
		OccurredAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("notify: marshal visit: %w", err)
	}
	return d.mailer.Handle(ctx, events.OutboxEntry{Type: eventType, Payload: payload})
}

var _ scheduling.Notifier = (*DirectNotifier)(nil)
