package handlers

import (
	"time"

	"github.com/connectd/billing/pkg/response"
	"github.com/connectd/billing/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespListWebhookEvents wraps the webhook event scan result in the standard envelope.
type RespListWebhookEvents struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerWebhookEventList  `json:"data"`
}

type SwaggerWebhookEventList struct {
	Items []SwaggerWebhookEvent `json:"items"`
	Total int64                 `json:"total"`
}

// SwaggerWebhookEvent is a simplified view of models.WebhookEventLog for documentation purposes.
type SwaggerWebhookEvent struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	SerialNumber *string   `json:"serial_number"`
	TraceID      string    `json:"trace_id"`
	EventTime    time.Time `json:"event_time"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SwaggerSubscription is a simplified view of a stored subscription for documentation purposes.
type SwaggerSubscription struct {
	SerialNumber           string                   `json:"serialNumber"`
	Status                 types.SubscriptionStatus `json:"status"`
	PlanType               string                   `json:"planType"`
	IsActive               bool                     `json:"isActive"`
	ExternalSubscriptionID *string                  `json:"externalSubscriptionId"`
}
