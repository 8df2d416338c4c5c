package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/config"
	"github.com/connectd/billing/pkg/logctx"
)

// ErrSignature marks a delivery whose signature did not verify. The HTTP
// layer maps it to 400 and nothing is written.
var ErrSignature = errors.New("invalid webhook signature")

// Outcome summarizes what a delivery did, for the HTTP response and tests.
type Outcome struct {
	EventID   string
	EventType string
	Serial    string
	Applied   bool
	Ignored   bool
}

// EventSink receives audit rows for processed deliveries. Implemented by
// the eventlog service.
type EventSink interface {
	Save(ctx context.Context, row *models.WebhookEventLog)
}

// Service reconciles asynchronous provider billing events into the local
// subscription store. Handlers are side-effect idempotent: the provider
// redelivers on any non-2xx response.
type Service struct {
	cfg    *config.Config
	store  substore.Store
	events EventSink
	log    *zap.SugaredLogger
}

func NewService(cfg *config.Config, store substore.Store, events EventSink, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, store: store, events: events, log: log}
}

// Process verifies, parses, and applies one webhook delivery. The signature
// is checked against the raw body before any parsing; verification failure
// performs no writes at all, not even audit rows.
func (s *Service) Process(ctx context.Context, payload []byte, sigHeader, traceID string) (*Outcome, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.cfg.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	out := &Outcome{EventID: event.ID, EventType: string(event.Type)}

	// One audit row per delivery, written once the outcome is known.
	up, err := parseEvent(&event)
	if err != nil {
		s.audit(ctx, &event, traceID, nil, models.WebhookEventLogStatusHandleFailed, err)
		return out, err
	}
	if up == nil {
		// No device linkage: benign, acknowledge without touching the store.
		logctx.FromCtx(ctx, s.log).Infow("webhook_event_ignored",
			"event_id", event.ID, "event_type", event.Type)
		out.Ignored = true
		s.audit(ctx, &event, traceID, nil, models.WebhookEventLogStatusIgnored, nil)
		return out, nil
	}
	out.Serial = up.SerialNumber

	applied, err := s.store.ApplyEvent(ctx, up)
	if err != nil {
		s.audit(ctx, &event, traceID, serialOf(up), models.WebhookEventLogStatusHandleFailed, err)
		return out, fmt.Errorf("failed to apply %s: %w", event.Type, err)
	}
	out.Applied = applied

	logctx.FromCtx(ctx, s.log).Infow("webhook_event_handled",
		"event_id", event.ID, "event_type", event.Type,
		"serial", up.SerialNumber, "status", up.Status, "applied", applied)
	s.audit(ctx, &event, traceID, serialOf(up), models.WebhookEventLogStatusHandled, nil)
	return out, nil
}

func eventTime(event *stripe.Event) time.Time {
	return time.Unix(event.Created, 0)
}

func (s *Service) audit(ctx context.Context, event *stripe.Event, traceID string, serial *string, status models.WebhookEventLogStatus, resErr error) {
	resMap := map[string]any{"status": status}
	if resErr != nil {
		resMap["error"] = resErr.Error()
	}
	resBytes, _ := json.Marshal(resMap)
	result := datatypes.JSON(resBytes)
	s.events.Save(ctx, &models.WebhookEventLog{
		EventID:      event.ID,
		EventType:    string(event.Type),
		SerialNumber: serial,
		TraceID:      traceID,
		EventTime:    eventTime(event),
		Data:         datatypes.JSON(event.Data.Raw),
		Result:       &result,
		Status:       status,
	})
}
