package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// DefaultPublishTimeout bounds a whole publish, AMQP handshake included.
const DefaultPublishTimeout = 2 * time.Second

// Publisher sends SponsorEvents to a durable queue on the default
// exchange.  It dials per publish so a broker outage never outlives a
// single event; callers treat errors as best effort.
type Publisher struct {
	url     string
	queue   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewPublisher returns a publisher for the given broker and queue.  A
// non-positive timeout means DefaultPublishTimeout.
func NewPublisher(url, queue string, timeout time.Duration, log zerolog.Logger) *Publisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Publisher{url: url, queue: queue, timeout: timeout, log: log.With().Str("component", "publisher").Logger()}
}

// Publish marshals ev and publishes it as a persistent message.  It
// returns within the publisher timeout even when the broker accepts the
// connection but never answers.
func (p *Publisher) Publish(ctx context.Context, ev SponsorEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp.Dial ignores ctx; the dial deadline also covers the handshake.
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Dial:      amqp.DefaultDial(dialBudget(ctx)),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		p.log.Debug().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	done := make(chan error, 1)
	go func() { done <- p.publishOn(ctx, conn, ev.Type, body) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = conn.Close() // unblocks a stalled channel call
		p.log.Debug().Err(ctx.Err()).Msg("rabbitmq publish timed out")
		return ctx.Err()
	}
}

func (p *Publisher) publishOn(ctx context.Context, conn *amqp.Connection, typ string, body []byte) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         typ,
			Body:         body,
		})
}

// dialBudget is the time left until ctx expires, never below a floor
// that still lets a healthy local broker answer.
func dialBudget(ctx context.Context) time.Duration {
	const floor = 50 * time.Millisecond
	dl, ok := ctx.Deadline()
	if !ok {
		return DefaultPublishTimeout
	}
	if left := time.Until(dl); left > floor {
		return left
	}
	return floor
}
