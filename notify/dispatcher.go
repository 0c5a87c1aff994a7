// Package notify renders reservation emails and delivers them off the request
// path. Nothing in this package reports an error back to the caller of Notify.
package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"bokaap-reservations/models"
)

// Stats is a snapshot of the dispatcher counters, served on the health endpoint.
type Stats struct {
	Queued  int64 `json:"queued"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Skipped int64 `json:"skipped"`
	Dropped int64 `json:"dropped"`
}

type Dispatcher struct {
	queue  Queue
	sender Sender
	from   string

	queued, sent, failed, skipped, dropped atomic.Int64
}

func NewDispatcher(queue Queue, sender Sender, from string) *Dispatcher {
	if from == "" {
		from = DefaultFrom
	}
	return &Dispatcher{queue: queue, sender: sender, from: from}
}

// Start launches the queue consumers that deliver jobs.
func (d *Dispatcher) Start(ctx context.Context) error {
	return d.queue.Start(ctx, d.Deliver)
}

func (d *Dispatcher) Close(ctx context.Context) error {
	return d.queue.Close(ctx)
}

// Notify schedules the email for event. Reservations without an email address
// are skipped silently; events without a template are logged and skipped.
func (d *Dispatcher) Notify(ctx context.Context, event string, r models.Reservation) {
	if r.Email == "" {
		d.skipped.Add(1)
		slog.Debug("reservation has no email, skipping notification", "reservation", r.ID, "event", event)
		return
	}
	if !Known(event) {
		d.skipped.Add(1)
		slog.Warn("no email template for event, skipping notification", "reservation", r.ID, "event", event)
		return
	}

	job := Job{
		ID:          uuid.NewString(),
		Event:       event,
		Reservation: r,
		EnqueuedAt:  time.Now().UTC(),
	}
	if err := d.queue.Enqueue(ctx, job); err != nil {
		d.dropped.Add(1)
		slog.Error("failed to enqueue notification", "job", job.ID, "reservation", r.ID, "event", event, "err", err)
		return
	}
	d.queued.Add(1)
}

// Deliver renders and sends a single job. It is the queue handler.
func (d *Dispatcher) Deliver(ctx context.Context, job Job) error {
	msg, err := Render(job.Event, job.Reservation)
	if err != nil {
		d.failed.Add(1)
		slog.Error("failed to render notification", "job", job.ID, "event", job.Event, "err", err)
		return err
	}

	err = d.sender.Send(ctx, Email{
		From:    d.from,
		To:      job.Reservation.Email,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		d.failed.Add(1)
		slog.Error("failed to send reservation email",
			"job", job.ID, "reservation", job.Reservation.ID, "event", job.Event,
			"queuedFor", time.Since(job.EnqueuedAt).String(), "err", err)
		return err
	}
	d.sent.Add(1)
	return nil
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:  d.queued.Load(),
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Skipped: d.skipped.Load(),
		Dropped: d.dropped.Load(),
	}
}
