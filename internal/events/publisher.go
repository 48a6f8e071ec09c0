package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/josh-kwaku/digital-banking/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, event domain.OutboxEvent) error
	Close() error
}

// RabbitPublisher publishes events to a durable topic exchange, using the
// event type as routing key. A dropped connection is redialed on the next
// Publish.
type RabbitPublisher struct {
	mu       sync.Mutex
	url      string
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url, exchange: exchange}
	if err := p.dial(); err != nil {
		return nil, fmt.Errorf("NewRabbitPublisher: %w", err)
	}
	return p, nil
}

// dial replaces the connection and its channel. Callers hold mu, except
// the constructor.
func (p *RabbitPublisher) dial() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	p.conn = conn
	p.channel = nil
	if err := p.openChannel(); err != nil {
		conn.Close()
		return fmt.Errorf("dial: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("openChannel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("openChannel: declare exchange %s: %w", p.exchange, err)
	}
	p.channel = ch
	return nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.dial(); err != nil {
			return fmt.Errorf("Publish: %w", err)
		}
	}
	// A channel is closed by the broker after any channel-level error.
	if p.channel == nil || p.channel.IsClosed() {
		if err := p.openChannel(); err != nil {
			return fmt.Errorf("Publish: %w", err)
		}
	}

	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		string(event.EventType),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.CreatedAt,
			Type:         string(event.EventType),
			Body:         event.Payload,
		},
	)
	if err != nil {
		return fmt.Errorf("Publish: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return nil
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.OutboxEvent) error {
	p.logger.Info("event published",
		"event_id", event.ID,
		"event_type", event.EventType,
		"payload", string(event.Payload),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
