package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable).Error(0)
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *MockChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange).Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *MockChannel) ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	a := m.Called(queue, autoAck)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(<-chan amqp.Delivery), a.Error(1)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

type fakeAcknowledger struct {
	acked, nacked bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error        { f.acked = true; return nil }
func (f *fakeAcknowledger) Nack(uint64, bool, bool) error { f.nacked = true; return nil }
func (f *fakeAcknowledger) Reject(uint64, bool) error     { return nil }

func TestAMQPQueue_EnqueuePublishesJSONJob(t *testing.T) {
	pub, sub := new(MockChannel), new(MockChannel)
	pub.On("ExchangeDeclare", exchangeName, "direct", true).Return(nil).Once()

	q, err := newAMQPQueue(pub, sub)
	require.NoError(t, err)

	job := Job{ID: "job-1", Event: EventNew, Reservation: sampleReservation(), EnqueuedAt: time.Now().UTC()}
	pub.On("PublishWithContext", exchangeName, notificationKey, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got Job
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.MessageId == "job-1" &&
			got.Event == EventNew &&
			got.Reservation.Email == "a@x.com"
	})).Return(nil).Once()

	assert.NoError(t, q.Enqueue(context.Background(), job))
	pub.AssertExpectations(t)
}

func TestAMQPQueue_ExchangeDeclareFailure(t *testing.T) {
	pub, sub := new(MockChannel), new(MockChannel)
	pub.On("ExchangeDeclare", exchangeName, "direct", true).Return(errors.New("access refused")).Once()

	_, err := newAMQPQueue(pub, sub)
	assert.Error(t, err)
}

func TestAMQPQueue_StartConsumesAndAcks(t *testing.T) {
	pub, sub := new(MockChannel), new(MockChannel)
	pub.On("ExchangeDeclare", exchangeName, "direct", true).Return(nil)
	q, err := newAMQPQueue(pub, sub)
	require.NoError(t, err)

	body, err := json.Marshal(Job{ID: "job-2", Event: EventCancelled, Reservation: sampleReservation()})
	require.NoError(t, err)
	ack := &fakeAcknowledger{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: body}
	close(deliveries)

	sub.On("QueueDeclare", queueName, true).Return(nil).Once()
	sub.On("QueueBind", queueName, notificationKey, exchangeName).Return(nil).Once()
	sub.On("ConsumeWithContext", queueName, false).Return((<-chan amqp.Delivery)(deliveries), nil).Once()
	pub.On("Close").Return(nil)
	sub.On("Close").Return(nil)

	handled := make(chan Job, 1)
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, job Job) error {
		handled <- job
		return nil
	}))

	select {
	case job := <-handled:
		assert.Equal(t, "job-2", job.ID)
	case <-time.After(time.Second):
		t.Fatal("job was not handled")
	}
	require.NoError(t, q.Close(context.Background()))
	assert.True(t, ack.acked)
	sub.AssertExpectations(t)
}

func TestHandleDelivery_NacksUndecodableBody(t *testing.T) {
	ack := &fakeAcknowledger{}
	called := false

	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")},
		func(context.Context, Job) error { called = true; return nil })

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.acked)
}

func TestHandleDelivery_AcksEvenWhenHandlerFails(t *testing.T) {
	ack := &fakeAcknowledger{}
	body, _ := json.Marshal(Job{ID: "job-3", Event: EventNew})

	handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body},
		func(context.Context, Job) error { return errors.New("smtp down") })

	assert.True(t, ack.acked)
}
