package notify

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"bokaap-reservations/models"
)

// Events that have an email template. Status updates use the new status as the event.
const (
	EventNew       = "new"
	EventConfirmed = "confirmed"
	EventCancelled = "cancelled"
)

var ErrUnknownEvent = errors.New("no email template for event")

// Message is a rendered email without its envelope.
type Message struct {
	Subject string
	HTML    string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]emailTemplate{
	EventNew: {
		subject: "Reservation Received - Bokaap Deli",
		body: template.Must(template.New(EventNew).Parse(`
<h1>Thank you for your reservation, {{.Name}}!</h1>
<p>We have received your reservation request for:</p>
<ul>
  <li>Date: {{.Date}}</li>
  <li>Time: {{.Time}}</li>
  <li>Number of guests: {{.Guests}}</li>
  <li>Table: {{.TableNumber}}</li>
</ul>
<p>We will review your reservation and confirm it shortly.</p>
<p>Best regards,<br>Bokaap Deli Team</p>
`)),
	},
	EventConfirmed: {
		subject: "Reservation Confirmed - Bokaap Deli",
		body: template.Must(template.New(EventConfirmed).Parse(`
<h1>Your reservation is confirmed, {{.Name}}!</h1>
<p>We're looking forward to seeing you on:</p>
<ul>
  <li>Date: {{.Date}}</li>
  <li>Time: {{.Time}}</li>
  <li>Number of guests: {{.Guests}}</li>
  <li>Table: {{.TableNumber}}</li>
</ul>
<p>See you soon!</p>
<p>Best regards,<br>Bokaap Deli Team</p>
`)),
	},
	EventCancelled: {
		subject: "Reservation Cancelled - Bokaap Deli",
		body: template.Must(template.New(EventCancelled).Parse(`
<h1>Reservation Cancelled</h1>
<p>Dear {{.Name}},</p>
<p>Unfortunately, we were unable to accommodate your reservation for:</p>
<ul>
  <li>Date: {{.Date}}</li>
  <li>Time: {{.Time}}</li>
  <li>Number of guests: {{.Guests}}</li>
</ul>
<p>We apologize for any inconvenience caused.</p>
<p>Best regards,<br>Bokaap Deli Team</p>
`)),
	},
}

// Known reports whether event has a template.
func Known(event string) bool {
	_, ok := templates[event]
	return ok
}

// Render fills the template for event with the reservation details. Customer
// supplied fields are HTML escaped.
func Render(event string, r models.Reservation) (Message, error) {
	tmpl, ok := templates[event]
	if !ok {
		return Message{}, fmt.Errorf("%w %q", ErrUnknownEvent, event)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, r); err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", event, err)
	}
	return Message{Subject: tmpl.subject, HTML: buf.String()}, nil
}
