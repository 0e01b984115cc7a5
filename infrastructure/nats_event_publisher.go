package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"satsdice/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventEnvelope wraps a domain event with delivery metadata
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	natsClient *NATSClient
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{natsClient: natsClient}
}

// Publish publishes an event to NATS under its type-derived subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "satsdice",
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := subjectForEvent(event.Type())
	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// EnsureWagerEventStream ensures the outbound event stream exists
func (p *NATSEventPublisher) EnsureWagerEventStream() error {
	return p.natsClient.EnsureWagerEventStream()
}

// subjectForEvent maps an event type to its NATS subject. All wager events
// live under the wager_events stream.
func subjectForEvent(eventType events.EventType) string {
	return "wager." + string(eventType)
}
