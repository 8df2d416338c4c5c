package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/connectd/billing/internal/app/service/reconciler"
	"github.com/connectd/billing/pkg/logctx"
)

// maxWebhookBody bounds the raw payload read; provider events are a few KB.
const maxWebhookBody = 1 << 20

// WebhookAck is the acknowledgement body the provider expects.
type WebhookAck struct {
	Received bool `json:"received"`
}

// @Summary      Billing webhook
// @Description  Receives signed billing-provider events and reconciles them into the local subscription store. The raw body is verified against the Stripe-Signature header before parsing.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body string true "Signed provider event payload"
// @Success      200  {object}  handlers.WebhookAck
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/billing/webhook/stripe [post]
func ApiStripeWebhook(rec *reconciler.Service, log *zap.SugaredLogger, events *prometheus.CounterVec) gin.HandlerFunc {
	count := func(eventType, result string) {
		if events != nil {
			events.WithLabelValues(eventType, result).Inc()
		}
	}
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		out, err := rec.Process(c.Request.Context(), payload,
			c.GetHeader("Stripe-Signature"), c.GetString(logctx.GinKeyTraceID))
		if err != nil {
			logctx.FromGin(c, log).Errorw("webhook_process_failed", "error", err.Error())
			msg := "event handling failed"
			result := "failed"
			if errors.Is(err, reconciler.ErrSignature) {
				msg = "invalid signature"
				result = "bad_signature"
			}
			eventType := "unknown"
			if out != nil && out.EventType != "" {
				eventType = out.EventType
			}
			count(eventType, result)
			// 400 either way: the provider's own retry policy governs
			// redelivery, nothing is orchestrated here.
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		result := "handled"
		if out.Ignored {
			result = "ignored"
		}
		count(out.EventType, result)

		logctx.FromGin(c, log).Infow("webhook_handled",
			"event_id", out.EventID, "event_type", out.EventType,
			"serial", out.Serial, "applied", out.Applied, "ignored", out.Ignored)
		c.JSON(http.StatusOK, WebhookAck{Received: true})
	}
}

func RegisterWebhookRoutes(r gin.IRouter, rec *reconciler.Service, log *zap.SugaredLogger, events *prometheus.CounterVec) {
	r.POST("/stripe", ApiStripeWebhook(rec, log, events))
}
