package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Overlaps reports whether the half-open intervals [aStart, aStart+aDur) and
// [bStart, bStart+bDur) intersect. Back-to-back visits, where one ends
// exactly when the next starts, do not overlap.
func Overlaps(aStart time.Time, aDur time.Duration, bStart time.Time, bDur time.Duration) bool {
	return aStart.Before(bStart.Add(bDur)) && bStart.Before(aStart.Add(aDur))
}

// findConflict scans the agent's visits on the candidate's calendar day and
// returns the first overlapping active one. The exclude id skips the visit
// being rescheduled so it never collides with itself.
func (s *Scheduler) findConflict(ctx context.Context, agentID uuid.UUID, start time.Time, d time.Duration, exclude uuid.UUID) (*ConflictError, error) {
	dayStart, dayEnd := s.hours.DayBounds(start)
	visits, err := s.store.ListByAgentBetween(ctx, agentID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("scheduling: conflict scan: %w", err)
	}

	for _, v := range visits {
		if v.ID == exclude || !v.Status.Active() {
			continue
		}
		if Overlaps(start, d, v.ScheduledAt, v.Span()) {
			return &ConflictError{
				ClientName:    v.ClientName,
				PropertyTitle: v.PropertyTitle,
				StartsAt:      v.ScheduledAt.In(s.hours.Location()),
			}, nil
		}
	}
	return nil, nil
}
