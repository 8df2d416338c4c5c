package reconciler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"

	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/pkg/types"
)

// Thin payload views over the provider's event JSON. Webhook payloads carry
// related objects as plain id strings (no expansion), so string fields are
// enough here; the full stripe structs are only needed on the direct API
// path.
type checkoutSessionPayload struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type subscriptionPayload struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	Plan     struct {
		Nickname string `json:"nickname"`
	} `json:"plan"`
}

type invoicePayload struct {
	ID                  string            `json:"id"`
	Customer            string            `json:"customer"`
	Subscription        string            `json:"subscription"`
	Metadata            map[string]string `json:"metadata"`
	SubscriptionDetails struct {
		Metadata map[string]string `json:"metadata"`
	} `json:"subscription_details"`
}

const (
	metaSerialNumber = "serial_number"
	metaPlanType     = "plan_type"
	metaWallet       = "wallet_address"
)

// mapProviderStatus folds the provider's status vocabulary onto the local
// one. Unknown values map to incomplete rather than failing the event.
func mapProviderStatus(s string) types.SubscriptionStatus {
	switch s {
	case "trialing":
		return types.SubscriptionStatusTrialing
	case "active":
		return types.SubscriptionStatusActive
	case "past_due", "unpaid":
		return types.SubscriptionStatusPastDue
	case "canceled", "incomplete_expired":
		return types.SubscriptionStatusCanceled
	default:
		return types.SubscriptionStatusIncomplete
	}
}

// parseEvent turns a verified provider event into a store update. A nil
// update with nil error means the event carries no device linkage (or is an
// unhandled type) and must be acknowledged without any write.
func parseEvent(event *stripe.Event) (*substore.EventUpdate, error) {
	eventAt := time.Unix(event.Created, 0)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session checkoutSessionPayload
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("malformed checkout session payload: %w", err)
		}
		serial := session.Metadata[metaSerialNumber]
		if serial == "" {
			return nil, nil
		}
		up := &substore.EventUpdate{
			SerialNumber:       serial,
			ExternalCustomerID: session.Customer,
			Status:             types.SubscriptionStatusActive,
			PlanType:           session.Metadata[metaPlanType],
			EventAt:            eventAt,
		}
		if session.Subscription != "" {
			up.ExternalSubscriptionID = lo.ToPtr(session.Subscription)
		}
		if w := session.Metadata[metaWallet]; w != "" {
			up.OwnerWallet = lo.ToPtr(w)
		}
		return up, nil

	case stripe.EventTypeCustomerSubscriptionUpdated, stripe.EventTypeCustomerSubscriptionDeleted:
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("malformed subscription payload: %w", err)
		}
		serial := sub.Metadata[metaSerialNumber]
		if serial == "" {
			return nil, nil
		}
		status := mapProviderStatus(sub.Status)
		if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
			status = types.SubscriptionStatusCanceled
		}
		plan := sub.Metadata[metaPlanType]
		if plan == "" {
			plan = sub.Plan.Nickname
		}
		up := &substore.EventUpdate{
			SerialNumber:       serial,
			ExternalCustomerID: sub.Customer,
			Status:             status,
			PlanType:           plan,
			EventAt:            eventAt,
		}
		if sub.ID != "" {
			up.ExternalSubscriptionID = lo.ToPtr(sub.ID)
		}
		if w := sub.Metadata[metaWallet]; w != "" {
			up.OwnerWallet = lo.ToPtr(w)
		}
		return up, nil

	case stripe.EventTypeInvoicePaymentSucceeded, stripe.EventTypeInvoicePaymentFailed:
		var inv invoicePayload
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("malformed invoice payload: %w", err)
		}
		serial := inv.SubscriptionDetails.Metadata[metaSerialNumber]
		if serial == "" {
			serial = inv.Metadata[metaSerialNumber]
		}
		if serial == "" {
			return nil, nil
		}
		status := types.SubscriptionStatusActive
		if event.Type == stripe.EventTypeInvoicePaymentFailed {
			status = types.SubscriptionStatusPastDue
		}
		up := &substore.EventUpdate{
			SerialNumber:       serial,
			ExternalCustomerID: inv.Customer,
			Status:             status,
			EventAt:            eventAt,
		}
		if inv.Subscription != "" {
			up.ExternalSubscriptionID = lo.ToPtr(inv.Subscription)
		}
		return up, nil
	}

	// Event types outside the reconciled set are benign.
	return nil, nil
}

// serialOf extracts the business key for audit logging without applying the
// event.
func serialOf(up *substore.EventUpdate) *string {
	if up == nil || up.SerialNumber == "" {
		return nil
	}
	return lo.ToPtr(up.SerialNumber)
}
