package payment

import (
	"strings"
	"time"
)

// WebhookEvent is one verified delivery kept in the inbox.
type WebhookEvent struct {
	EventID     string
	EventType   string
	Digest      string
	ReceivedAt  time.Time
	ProcessedAt *time.Time
	Outcome     string
}

func NewWebhookEvent(eventID, eventType, digest string, receivedAt time.Time) (*WebhookEvent, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrEventIDRequired
	}
	return &WebhookEvent{
		EventID:    eventID,
		EventType:  eventType,
		Digest:     digest,
		ReceivedAt: receivedAt,
	}, nil
}

func (e *WebhookEvent) IsProcessed() bool {
	return e.ProcessedAt != nil
}
