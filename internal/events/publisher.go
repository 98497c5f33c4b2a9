package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the name of the audit stream.
	StreamName = "ASSISTANT_AUDIT"

	// SubjectPrefix is the prefix for all audit subjects.
	SubjectPrefix = "audit"
)

// TurnCompleted records one finished chat exchange.
type TurnCompleted struct {
	ConversationID uint      `json:"conversation_id"`
	UserID         uint      `json:"user_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// DocumentProcessed records one document ingestion outcome.
type DocumentProcessed struct {
	DocumentID uint      `json:"document_id"`
	Filename   string    `json:"filename"`
	Success    bool      `json:"success"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher writes audit events to JetStream. A nil Publisher is
// valid and drops every event, so callers need no enabled-check.
type Publisher struct {
	client *Client
}

// NewPublisher creates an audit publisher.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the audit stream exists.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	if p == nil {
		return nil
	}

	js := p.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Chat turn and document ingestion audit events",
	})
	if err != nil {
		return fmt.Errorf("failed to create audit stream: %w", err)
	}
	return nil
}

// PublishTurn publishes a completed chat turn.
func (p *Publisher) PublishTurn(ctx context.Context, ev TurnCompleted) error {
	subject := fmt.Sprintf("%s.turn.%d", SubjectPrefix, ev.ConversationID)
	return p.publish(ctx, subject, ev)
}

// PublishDocument publishes a document ingestion outcome.
func (p *Publisher) PublishDocument(ctx context.Context, ev DocumentProcessed) error {
	outcome := "failed"
	if ev.Success {
		outcome = "processed"
	}
	subject := fmt.Sprintf("%s.document.%s.%d", SubjectPrefix, outcome, ev.DocumentID)
	return p.publish(ctx, subject, ev)
}

func (p *Publisher) publish(ctx context.Context, subject string, payload any) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
