// Package events is the PostgreSQL-backed event bus shared by the API and the
// worker, built on Watermill's SQL transport.
//
// Mutations publish through PublishTx so the event row is written in the same
// transaction as the data change. With Options.Forwarder set, those rows land
// in an internal queue and a Forwarder daemon relays them to their topics.
//
// Subscribers in the same ConsumerGroup share the load; leave it empty to make
// every subscriber see every message. Handlers must be idempotent: a failing
// handler is retried with exponential backoff and then Nacked.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/logger"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
	shutdownTimeout   = 30 * time.Second
	forwarderTopic    = "_forwarder_queue"

	// MetadataEventID carries the domain event id, used by consumers for dedup.
	MetadataEventID = "event_id"
)

// Options configures an EventBus.
type Options struct {
	// ConsumerGroup load-balances messages between subscribers sharing it.
	ConsumerGroup string
	// Forwarder routes published messages through the durable forwarder queue.
	Forwarder bool
	// MaxRetries is the number of handler attempts per message (default 3).
	MaxRetries int
	// RetryDelay is the first backoff delay; it doubles per attempt (default 1s).
	RetryDelay time.Duration
}

// OptionsFromConfig returns the options used by the api and worker processes.
// All instances of a service share one consumer group.
func OptionsFromConfig(cfg *config.Config, forwarder bool) Options {
	return Options{
		ConsumerGroup: cfg.ServiceName + "-consumer",
		Forwarder:     forwarder,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	return o
}

// EventBus publishes and consumes messages stored in PostgreSQL.
// It does not own the *sql.DB it was built with.
type EventBus struct {
	publisher  message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	db         *sql.DB
	log        logger.Logger
	opts       Options
	wg         sync.WaitGroup
}

// NewEventBus builds the SQL publisher and subscriber on db. Watermill's
// schema tables are created on first use.
func NewEventBus(db *sql.DB, opts Options, log logger.Logger) (*EventBus, error) {
	opts = opts.withDefaults()
	wlog := &slogAdapter{log: log}

	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    opts.ConsumerGroup,
	}, wlog)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		publisher:  wrapForwarder(pub, opts.Forwarder),
		subscriber: sub,
		db:         db,
		log:        log,
		opts:       opts,
	}, nil
}

func wrapForwarder(pub message.Publisher, enabled bool) message.Publisher {
	if !enabled {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the daemon that drains the forwarder queue into the
// target topics. It returns once the daemon is running.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.opts.Forwarder {
		return errors.New("events: forwarder not enabled")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	wlog := &slogAdapter{log: q.log}
	fwdSub, err := watermillsql.NewSubscriber(q.db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    "forwarder-consumer",
	}, wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	targetPub, err := watermillsql.NewPublisher(q.db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
		}
	}()

	select {
	case <-fwd.Running():
		q.log.InfoContext(ctx, "events: forwarder running")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// NewMessage encodes payload as JSON and stamps the trace context of ctx into
// the message metadata.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: encode payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
	return msg, nil
}

// Decode unmarshals a message payload produced by NewMessage.
func Decode(msg *message.Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("events: decode %s: %w", msg.UUID, err)
	}
	return nil
}

// PublishTx writes msg to topic inside tx. The message becomes visible to
// subscribers only if tx commits.
func (q *EventBus) PublishTx(tx *sql.Tx, topic string, msg *message.Message) error {
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{
		SchemaAdapter: watermillsql.DefaultPostgreSQLSchema{},
	}, &slogAdapter{log: q.log})
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	if err := wrapForwarder(pub, q.opts.Forwarder).Publish(topic, msg); err != nil {
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Publish sends msgs to topic outside of any transaction.
func (q *EventBus) Publish(topic string, msgs ...*message.Message) error {
	if err := q.publisher.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Handler processes one message. The context carries the publisher's trace.
type Handler func(context.Context, *message.Message) error

// Subscribe consumes every topic in topics with handler until ctx is done.
// Failed messages (after retries) are Nacked and their errors sent on the
// returned channel, which the caller must drain. The channel is closed once
// all topics stop.
func (q *EventBus) Subscribe(ctx context.Context, topics []string, handler Handler) (<-chan error, error) {
	errCh := make(chan error, 100)
	var topicsWG sync.WaitGroup

	for _, topic := range topics {
		ch, err := q.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
		}
		topicsWG.Add(1)
		q.wg.Add(1)
		go func(topic string, ch <-chan *message.Message) {
			defer q.wg.Done()
			defer topicsWG.Done()
			q.consume(ctx, topic, ch, handler, errCh)
		}(topic, ch)
	}

	go func() {
		topicsWG.Wait()
		close(errCh)
	}()
	return errCh, nil
}

func (q *EventBus) consume(ctx context.Context, topic string, ch <-chan *message.Message, handler Handler, errCh chan<- error) {
	propagator := otel.GetTextMapPropagator()
	for msg := range ch {
		carrier := propagation.MapCarrier{}
		for k, v := range msg.Metadata {
			carrier[k] = v
		}
		msgCtx := propagator.Extract(ctx, carrier)

		err := retryWithBackoff(msgCtx, msg, handler, q.opts.MaxRetries, q.opts.RetryDelay, q.log)
		if err == nil {
			msg.Ack()
			continue
		}
		msg.Nack()
		select {
		case errCh <- fmt.Errorf("%s: %w", topic, err):
		default:
			q.log.ErrorContext(msgCtx, "events: error channel full", "topic", topic, "error", err)
		}
	}
}

// retryWithBackoff runs handler up to attempts times, doubling delay between
// attempts, and gives up early when ctx is done.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	delay time.Duration,
	log logger.Logger,
) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed",
			"message_uuid", msg.UUID,
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("handler failed after %d attempts: %w", attempts, err)
}

// Ping checks the database behind the bus.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits for in-flight handlers and
// closes the publisher. The database is left open.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return nil
}

// slogAdapter lets Watermill log through logger.Logger.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}

func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
