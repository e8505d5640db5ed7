package events

import (
	"context"
	"time"
)

const (
	EventSource  = "academic-records-service"
	EventVersion = "1.0"
)

// Topics
const (
	TopicUserCreated      = "users.created"
	TopicUserDeleted      = "users.deleted"
	TopicClasseDeleted    = "classes.deleted"
	TopicResultsSubmitted = "results.submitted"
)

// Event is the envelope written to every topic
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher publishes domain events after the change they describe has committed
type EventPublisher interface {
	Publish(ctx context.Context, topic string, data interface{}) error
	Close() error
}

type UserCreatedEvent struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type UserDeletedEvent struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type ClasseDeletedEvent struct {
	ClasseID uint `json:"classe_id"`
	Exams    int  `json:"exams_removed"`
}

type ResultsSubmittedEvent struct {
	ResultIDs   []uint `json:"result_ids"`
	SubmittedBy uint   `json:"submitted_by"`
}
