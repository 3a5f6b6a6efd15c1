package scheduling

import (
	"errors"
	"fmt"
	"time"
)

// Store-level sentinels. The orchestrator translates these into the typed
// errors below before they reach a caller.
var (
	ErrNotFound  = errors.New("scheduling: appointment not found")
	ErrSlotTaken = errors.New("scheduling: slot already taken")
)

// ValidationError reports malformed input, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// BusinessHoursError reports a start or end instant outside operating windows.
type BusinessHoursError struct {
	Reason string
}

func (e *BusinessHoursError) Error() string {
	return e.Reason
}

// ConflictError reports an overlapping visit for the same agent. It carries
// the colliding visit's client and property so callers can render it.
type ConflictError struct {
	ClientName    string
	PropertyTitle string
	StartsAt      time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("the agent already has a visit with %s at %q starting %s",
		e.ClientName, e.PropertyTitle, e.StartsAt.Format("Mon Jan 2 15:04"))
}

// NotFoundError reports a missing property, client, agent or appointment.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsExpected reports whether err is one of the typed outcomes a caller is
// supposed to render directly, as opposed to an infrastructure fault.
func IsExpected(err error) bool {
	var ve *ValidationError
	var be *BusinessHoursError
	var ce *ConflictError
	var ne *NotFoundError
	return errors.As(err, &ve) || errors.As(err, &be) || errors.As(err, &ce) || errors.As(err, &ne)
}
