package models

import (
	"time"

	"github.com/examforge/examforge/internal/shared/constants"
)

// WebhookEventModel is the inbox row for one verified delivery.
type WebhookEventModel struct {
	EventID     string `gorm:"primaryKey;size:128"`
	EventType   string `gorm:"size:64;not null"`
	Digest      string `gorm:"size:80"`
	ReceivedAt  time.Time
	ProcessedAt *time.Time
	Outcome     string `gorm:"size:32"`
}

func (WebhookEventModel) TableName() string {
	return constants.TableWebhookEvents
}
