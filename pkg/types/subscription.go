package types

// SubscriptionStatus mirrors the payments provider's subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
)

// Valid reports whether s is a known status value.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusIncomplete, SubscriptionStatusTrialing,
		SubscriptionStatusActive, SubscriptionStatusPastDue,
		SubscriptionStatusCanceled:
		return true
	}
	return false
}

// IsActive reports whether a subscription in this status grants service
// access. Only active and trialing do.
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// Terminal reports whether the status admits no further transitions.
func (s SubscriptionStatus) Terminal() bool {
	return s == SubscriptionStatusCanceled
}

var statusTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusIncomplete: {SubscriptionStatusTrialing, SubscriptionStatusActive},
	SubscriptionStatusTrialing:   {SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusCanceled},
	SubscriptionStatusActive:     {SubscriptionStatusPastDue, SubscriptionStatusCanceled},
	SubscriptionStatusPastDue:    {SubscriptionStatusActive, SubscriptionStatusCanceled},
	SubscriptionStatusCanceled:   {},
}

// CanTransition reports whether the provider lifecycle permits moving from
// one status to another. Same-status writes are always permitted so that
// replayed events can re-apply the value already stored.
func CanTransition(from, to SubscriptionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CancellationFeedback is the closed set of reasons a customer may give when
// canceling. Shared between request validation and both billing backends.
type CancellationFeedback string

const (
	CancellationFeedbackTooExpensive    CancellationFeedback = "too_expensive"
	CancellationFeedbackMissingFeatures CancellationFeedback = "missing_features"
	CancellationFeedbackSwitchedService CancellationFeedback = "switched_service"
	CancellationFeedbackUnused          CancellationFeedback = "unused"
	CancellationFeedbackCustomerService CancellationFeedback = "customer_service"
	CancellationFeedbackLowQuality      CancellationFeedback = "low_quality"
	CancellationFeedbackTooComplex      CancellationFeedback = "too_complex"
	CancellationFeedbackOther           CancellationFeedback = "other"
)

func (f CancellationFeedback) Valid() bool {
	switch f {
	case CancellationFeedbackTooExpensive, CancellationFeedbackMissingFeatures,
		CancellationFeedbackSwitchedService, CancellationFeedbackUnused,
		CancellationFeedbackCustomerService, CancellationFeedbackLowQuality,
		CancellationFeedbackTooComplex, CancellationFeedbackOther:
		return true
	}
	return false
}

// CancellationDetails is the optional structured feedback attached to a
// cancel request and forwarded to whichever backend is active.
type CancellationDetails struct {
	Feedback CancellationFeedback `json:"feedback"`
	Comment  string               `json:"comment,omitempty"`
}
