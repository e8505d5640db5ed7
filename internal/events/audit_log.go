package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Topics lists every topic the service publishes to
var Topics = []string{TopicUserCreated, TopicUserDeleted, TopicClasseDeleted, TopicResultsSubmitted}

// AuditLog writes one structured log line per domain event. It is the local
// consumer when events stay in process.
type AuditLog struct {
	subscriber message.Subscriber
	logger     *slog.Logger
	onEvent    func(Event)
}

func NewAuditLog(subscriber message.Subscriber, logger *slog.Logger) *AuditLog {
	return &AuditLog{subscriber: subscriber, logger: logger}
}

// Run subscribes to topics and consumes until ctx is done or the subscriber closes
func (a *AuditLog) Run(ctx context.Context, topics ...string) error {
	for _, topic := range topics {
		messages, err := a.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		go a.consume(messages)
	}
	return nil
}

func (a *AuditLog) consume(messages <-chan *message.Message) {
	for msg := range messages {
		var event Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			a.logger.Warn("Dropping malformed event", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		a.logger.Info("Domain event",
			"event_id", event.ID,
			"type", event.Type,
			"at", event.Timestamp,
			"data", event.Data,
		)
		if a.onEvent != nil {
			a.onEvent(event)
		}
		msg.Ack()
	}
}
