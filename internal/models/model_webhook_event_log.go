package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusIgnored      WebhookEventLogStatus = "ignored"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog is the audit trail of provider webhook deliveries.
// Use case: troubleshooting reconciliation.
type WebhookEventLog struct {
	ID           string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	EventID      string                `gorm:"column:event_id;type:varchar(128);index" json:"event_id"`
	EventType    string                `gorm:"column:event_type;type:varchar(128);not null" json:"event_type"`
	SerialNumber *string               `gorm:"column:serial_number;type:varchar(64)" json:"serial_number"`
	TraceID      string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	EventTime    time.Time             `gorm:"column:event_time" json:"event_time"`
	Data         datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result       *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status       WebhookEventLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "connectd.webhook_event_log" }
