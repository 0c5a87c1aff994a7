package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName    = "reservations"
	notificationKey = "reservation.notification"
	queueName       = "reservation_notifications"
	consumerName    = "reservation_api"
)

// amqpChannel is the part of *amqp.Channel the queue uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// AMQPQueue ships jobs through RabbitMQ so they survive a restart of the API.
// The same process consumes them.
type AMQPQueue struct {
	// publishing on one channel from many goroutines is serialised
	mu      sync.Mutex
	publish amqpChannel
	consume amqpChannel
	wg      sync.WaitGroup
}

// DialAMQP connects to the broker, retrying like the other services do at boot.
func DialAMQP(uri string, attempts int) (*amqp.Connection, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(uri)
		if err == nil {
			slog.Info("AMQP connection established")
			return conn, nil
		}
		slog.Warn("AMQP dial failed", "attempt", i, "err", err)
		if i < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("could not establish AMQP connection after %d attempts: %w", attempts, err)
}

func NewAMQPQueue(conn *amqp.Connection) (*AMQPQueue, error) {
	pub, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	sub, err := conn.Channel()
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	return newAMQPQueue(pub, sub)
}

func newAMQPQueue(pub, sub amqpChannel) (*AMQPQueue, error) {
	err := pub.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPQueue{publish: pub, consume: sub}, nil
}

func (q *AMQPQueue) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.publish.PublishWithContext(ctx,
		exchangeName,    // exchange
		notificationKey, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    job.EnqueuedAt,
			Body:         body,
		},
	)
}

func (q *AMQPQueue) Start(ctx context.Context, handle HandlerFunc) error {
	_, err := q.consume.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = q.consume.QueueBind(
		queueName,       // queue name
		notificationKey, // routing key
		exchangeName,    // exchange
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := q.consume.ConsumeWithContext(
		ctx,
		queueName,    // queue
		consumerName, // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queueName, err)
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for d := range deliveries {
			handleDelivery(ctx, d, handle)
		}
	}()
	slog.Info("notification consumer started", "queue", queueName, "key", notificationKey)
	return nil
}

// handleDelivery acks every decodable job once handled. Delivery failures are
// already logged and counted by the handler; requeueing would resend mail.
func handleDelivery(ctx context.Context, d amqp.Delivery, handle HandlerFunc) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		slog.Error("discarding undecodable notification job", "err", err, "messageId", d.MessageId)
		_ = d.Nack(false, false)
		return
	}

	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()
	if err := handle(jobCtx, job); err != nil {
		slog.Debug("notification job failed", "job", job.ID, "err", err)
	}
	if err := d.Ack(false); err != nil {
		slog.Error("failed to ack notification job", "job", job.ID, "err", err)
	}
}

// Close closes both channels. The consume loop ends once the broker closes the
// delivery channel.
func (q *AMQPQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	pubErr := q.publish.Close()
	q.mu.Unlock()
	subErr := q.consume.Close()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if pubErr != nil {
		return pubErr
	}
	return subErr
}
