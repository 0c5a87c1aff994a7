package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, email Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return s.err
}

func (s *recordingSender) emails() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Email(nil), s.sent...)
}

func startDispatcher(t *testing.T, sender Sender) *Dispatcher {
	t.Helper()
	d := NewDispatcher(NewMemoryQueue(10, 2), sender, "")
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = d.Close(ctx)
	})
	return d
}

func TestDispatcher_DeliversRenderedEmail(t *testing.T) {
	sender := &recordingSender{}
	d := startDispatcher(t, sender)

	d.Notify(context.Background(), EventConfirmed, sampleReservation())

	require.Eventually(t, func() bool { return d.Stats().Sent == 1 }, time.Second, 10*time.Millisecond)
	emails := sender.emails()
	require.Len(t, emails, 1)
	assert.Equal(t, "a@x.com", emails[0].To)
	assert.Equal(t, DefaultFrom, emails[0].From)
	assert.Equal(t, "Reservation Confirmed - Bokaap Deli", emails[0].Subject)
	assert.EqualValues(t, 1, d.Stats().Queued)
}

func TestDispatcher_SendFailureIsCountedNotReturned(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	d := startDispatcher(t, sender)

	d.Notify(context.Background(), EventNew, sampleReservation())

	require.Eventually(t, func() bool { return d.Stats().Failed == 1 }, time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 0, d.Stats().Sent)
}

func TestDispatcher_SkipsWithoutEmailOrTemplate(t *testing.T) {
	sender := &recordingSender{}
	d := startDispatcher(t, sender)

	noEmail := sampleReservation()
	noEmail.Email = ""
	d.Notify(context.Background(), EventNew, noEmail)
	d.Notify(context.Background(), "seated", sampleReservation())

	stats := d.Stats()
	assert.EqualValues(t, 2, stats.Skipped)
	assert.EqualValues(t, 0, stats.Queued)
	assert.Empty(t, sender.emails())
}

func TestDispatcher_DropsWhenQueueIsFull(t *testing.T) {
	// not started, so nothing drains the single buffered slot
	d := NewDispatcher(NewMemoryQueue(1, 1), &recordingSender{}, "Test <t@example.com>")

	d.Notify(context.Background(), EventNew, sampleReservation())
	d.Notify(context.Background(), EventNew, sampleReservation())

	stats := d.Stats()
	assert.EqualValues(t, 1, stats.Queued)
	assert.EqualValues(t, 1, stats.Dropped)
}

func TestMemoryQueue_RejectsAfterClose(t *testing.T) {
	q := NewMemoryQueue(4, 1)
	require.NoError(t, q.Start(context.Background(), func(context.Context, Job) error { return nil }))
	require.NoError(t, q.Close(context.Background()))

	err := q.Enqueue(context.Background(), Job{ID: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
