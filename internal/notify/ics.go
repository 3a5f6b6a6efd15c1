package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const icsTimeLayout = "20060102T150405Z"

// VisitInvite holds the fields rendered into a calendar invite.
type VisitInvite struct {
	AppointmentID   uuid.UUID
	Summary         string
	Location        string
	Description     string
	Start           time.Time
	Duration        time.Duration
	OrganizerName   string
	OrganizerEmail  string
	AttendeeName    string
	AttendeeEmail   string
}

// BuildICS renders an RFC 5545 VCALENDAR with a single VEVENT. Times are
// emitted in UTC so clients render them in the viewer's local zone.
func BuildICS(inv VisitInvite) []byte {
	start := inv.Start.UTC()
	end := start.Add(inv.Duration)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//Del Sur Propiedades//Backoffice//ES")
	line("METHOD:REQUEST")
	line("BEGIN:VEVENT")
	line("UID:%s@backoffice", inv.AppointmentID)
	line("DTSTAMP:%s", time.Now().UTC().Format(icsTimeLayout))
	line("DTSTART:%s", start.Format(icsTimeLayout))
	line("DTEND:%s", end.Format(icsTimeLayout))
	line("SUMMARY:%s", escapeICS(inv.Summary))
	if inv.Location != "" {
		line("LOCATION:%s", escapeICS(inv.Location))
	}
	if inv.Description != "" {
		line("DESCRIPTION:%s", escapeICS(inv.Description))
	}
	if inv.OrganizerEmail != "" {
		line("ORGANIZER;CN=%s:mailto:%s", escapeICS(inv.OrganizerName), inv.OrganizerEmail)
	}
	if inv.AttendeeEmail != "" {
		line("ATTENDEE;CN=%s;RSVP=TRUE:mailto:%s", escapeICS(inv.AttendeeName), inv.AttendeeEmail)
	}
	line("END:VEVENT")
	line("END:VCALENDAR")
	return []byte(b.String())
}

// escapeICS escapes the characters RFC 5545 reserves in text values.
func escapeICS(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}
