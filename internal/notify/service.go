package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/delsurprop/backoffice/internal/events"
	"github.com/delsurprop/backoffice/pkg/logging"
)

// VisitMailer turns visit events from the outbox into confirmation emails
// for the client and the agent, each carrying a calendar invite.
type VisitMailer struct {
	email  EmailSender
	loc    *time.Location
	logger *logging.Logger
}

// NewVisitMailer creates a mailer that renders visit times in loc.
func NewVisitMailer(email EmailSender, loc *time.Location, logger *logging.Logger) *VisitMailer {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VisitMailer{email: email, loc: loc, logger: logger}
}

// Handle delivers one outbox entry. Unknown event types are acknowledged
// without action so they do not clog the queue.
func (m *VisitMailer) Handle(ctx context.Context, entry events.OutboxEntry) error {
	switch entry.Type {
	case events.TypeVisitBooked, events.TypeVisitRescheduled:
	default:
		m.logger.Debug("ignoring outbox entry", "type", entry.Type, "event_id", entry.ID)
		return nil
	}
	if m.email == nil {
		return nil
	}

	var evt events.VisitBookedV1
	if err := json.Unmarshal(entry.Payload, &evt); err != nil {
		return fmt.Errorf("notify: decode %s payload: %w", entry.Type, err)
	}

	when := evt.ScheduledAt.In(m.loc)
	rescheduled := entry.Type == events.TypeVisitRescheduled

	ics := BuildICS(VisitInvite{
		AppointmentID:  evt.AppointmentID,
		Summary:        fmt.Sprintf("Visita: %s", evt.PropertyTitle),
		Location:       evt.PropertyAddress,
		Description:    evt.Notes,
		Start:          evt.ScheduledAt,
		Duration:       time.Duration(evt.DurationMinutes) * time.Minute,
		OrganizerName:  evt.AgentName,
		OrganizerEmail: evt.AgentEmail,
		AttendeeName:   evt.ClientName,
		AttendeeEmail:  evt.ClientEmail,
	})
	attachment := &Attachment{
		Filename: "visita.ics",
		MIMEType: "text/calendar",
		Content:  ics,
	}

	subject := fmt.Sprintf("Visita confirmada: %s", evt.PropertyTitle)
	if rescheduled {
		subject = fmt.Sprintf("Visita reprogramada: %s", evt.PropertyTitle)
	}
	whenText := when.Format("02/01/2006 15:04")

	clientBody := fmt.Sprintf(`Hola %s,

Tu visita a %s quedó agendada.

Propiedad: %s
Dirección: %s
Fecha y hora: %s
Duración: %d minutos
Agente: %s

Cualquier consulta, respondé este correo.

— Del Sur Propiedades`,
		evt.ClientName, evt.PropertyTitle, evt.PropertyTitle,
		evt.PropertyAddress, whenText, evt.DurationMinutes, evt.AgentName)

	agentBody := fmt.Sprintf(`Visita agendada en tu calendario.

Propiedad: %s
Dirección: %s
Cliente: %s
Fecha y hora: %s
Duración: %d minutos
Notas: %s

— Del Sur Propiedades`,
		evt.PropertyTitle, evt.PropertyAddress, evt.ClientName,
		whenText, evt.DurationMinutes, evt.Notes)

	recipients := []EmailMessage{
		{To: evt.ClientEmail, ToName: evt.ClientName, Subject: subject, Body: clientBody, Attachment: attachment},
		{To: evt.AgentEmail, ToName: evt.AgentName, Subject: subject, Body: agentBody, Attachment: attachment},
	}

	var failed int
	for _, msg := range recipients {
		if msg.To == "" {
			continue
		}
		if err := m.email.Send(ctx, msg); err != nil {
			m.logger.Error("visit email failed", "error", err, "to", msg.To, "appointment_id", evt.AppointmentID)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("notify: %d visit email(s) failed", failed)
	}
	return nil
}

var _ events.DeliveryHandler = (*VisitMailer)(nil)
