package events

import (
	"context"
	"fmt"
	"time"

	"github.com/delsurprop/backoffice/internal/scheduling"
)

// OutboxNotifier hands visit notifications to the outbox instead of sending
// them inline. The booking transaction stays fast and the Deliverer retries
// email delivery until it sticks.
type OutboxNotifier struct {
	store *OutboxStore
}

func NewOutboxNotifier(store *OutboxStore) *OutboxNotifier {
	return &OutboxNotifier{store: store}
}

func (n *OutboxNotifier) VisitBooked(ctx context.Context, v scheduling.VisitNotification) error {
	eventType := TypeVisitBooked
	if v.Rescheduled {
		eventType = TypeVisitRescheduled
	}
	payload := VisitBookedV1{
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
	}
	if _, err := n.store.Insert(ctx, eventType, payload); err != nil {
		return fmt.Errorf("events: enqueue %s: %w", eventType, err)
	}
	return nil
}

var _ scheduling.Notifier = (*OutboxNotifier)(nil)
