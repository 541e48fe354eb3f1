package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// Subscriber consumes ExchangeName through a private, auto-deleted queue
// and reconnects with exponential backoff when the broker drops.
type Subscriber struct {
	url string
	log *zap.Logger
}

func NewSubscriber(url string, log *zap.Logger) *Subscriber {
	return &Subscriber{url: url, log: log}
}

// Subscribe delivers events on any of tables to fn until the returned
// stop function is called or ctx ends.  The first dial happens before
// Subscribe returns so a broker that is down at startup is reported to
// the caller; later disconnects are retried in the background.  fn runs
// on the consumer goroutine, one event at a time.
func (s *Subscriber) Subscribe(ctx context.Context, tables []string, fn func(ChangeEvent)) (func(), error) {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	want := make(map[string]bool, len(tables))
	for _, t := range tables {
		want[t] = true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(ctx, conn, want, fn)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	return stop, nil
}

func (s *Subscriber) run(ctx context.Context, conn *amqp.Connection, want map[string]bool, fn func(ChangeEvent)) {
	backoff := time.Second
	for {
		if conn != nil {
			err := s.consumeLoop(ctx, conn, want, fn)
			_ = conn.Close()
			conn = nil
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("change-consumer: consume loop ended, reconnecting", zap.Error(err))
			backoff = time.Second
		}
		if !sleep(ctx, backoff) {
			return
		}
		c, err := amqp.Dial(s.url)
		if err != nil {
			s.log.Warn("change-consumer: failed to dial broker",
				zap.Error(err), zap.Duration("retry_in", backoff))
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		conn = c
	}
}

func (s *Subscriber) consumeLoop(ctx context.Context, conn *amqp.Connection, want map[string]bool, fn func(ChangeEvent)) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := dispatch(d.Body, want, fn); err != nil {
				s.log.Warn("change-consumer: dropping message", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// dispatch decodes body and hands it to fn when its table is wanted.
// Events on other tables are acknowledged silently.
func dispatch(body []byte, want map[string]bool, fn func(ChangeEvent)) error {
	ev, err := DecodeChangeEvent(body)
	if err != nil {
		return err
	}
	if want[ev.Table] {
		fn(ev)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
