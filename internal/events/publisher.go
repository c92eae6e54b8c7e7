package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookmarket/internal/domain/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchangeName = "bookmarket.events"
	exchangeType = "topic"

	// Event types
	EventTypeAdminAction  = "admin.action"
	EventTypeBookApproved = "book.approved"
	EventTypeBookRejected = "book.rejected"
	EventTypeOrderStatus  = "order.status_updated"
	EventTypeOrderCreated = "order.created"
	EventTypeUserDeleted  = "user.deleted"

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Event represents a domain event
type Event struct {
	EventID      string                 `json:"event_id"`
	EventType    string                 `json:"event_type"`
	EventVersion string                 `json:"event_version"`
	Timestamp    string                 `json:"timestamp"`
	Payload      map[string]interface{} `json:"payload"`
}

// Publisher handles event publishing to RabbitMQ.
// 監査イベントの発行はビジネストランザクションのcommit後に行い、
// 発行失敗で業務処理を巻き戻さない。
type Publisher interface {
	PublishAdminAction(ctx context.Context, action model.AdminAction) error
	PublishOrderCreated(ctx context.Context, orderID int64, orderNumber string, total int64) error
	Close() error
}

type amqpPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(url string, log *zap.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &amqpPublisher{conn: conn, channel: channel, log: log}, nil
}

func (p *amqpPublisher) PublishAdminAction(ctx context.Context, action model.AdminAction) error {
	event := Event{
		EventID:      uuid.New().String(),
		EventType:    EventTypeAdminAction,
		EventVersion: "1.0.0",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Payload: map[string]interface{}{
			"admin_id":     action.AdminID,
			"action_type":  string(action.ActionType),
			"description":  action.Description,
			"target_table": action.TargetTable,
			"target_id":    action.TargetID,
		},
	}
	return p.publishWithRetry(ctx, EventTypeAdminAction, event)
}

func (p *amqpPublisher) PublishOrderCreated(ctx context.Context, orderID int64, orderNumber string, total int64) error {
	event := Event{
		EventID:      uuid.New().String(),
		EventType:    EventTypeOrderCreated,
		EventVersion: "1.0.0",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Payload: map[string]interface{}{
			"order_id":     orderID,
			"order_number": orderNumber,
			"total_amount": total,
		},
	}
	return p.publishWithRetry(ctx, EventTypeOrderCreated, event)
}

func (p *amqpPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// publishWithRetry publishes an event with exponential backoff retry
func (p *amqpPublisher) publishWithRetry(ctx context.Context, routingKey string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event", zap.Error(err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
		}

		err := p.channel.PublishWithContext(
			ctx,
			exchangeName,
			routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
				MessageId:    event.EventID,
				Body:         body,
				Headers: amqp.Table{
					"event_type":    event.EventType,
					"event_version": event.EventVersion,
				},
			},
		)
		if err != nil {
			lastErr = err
			p.log.Warn("Failed to publish event, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		return nil
	}

	return fmt.Errorf("failed to publish event after %d attempts: %w", maxRetries, lastErr)
}

// NoopPublisher はAMQP未設定のときに使う。何もしない。
type NoopPublisher struct{}

func (NoopPublisher) PublishAdminAction(ctx context.Context, action model.AdminAction) error {
	return nil
}

func (NoopPublisher) PublishOrderCreated(ctx context.Context, orderID int64, orderNumber string, total int64) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
