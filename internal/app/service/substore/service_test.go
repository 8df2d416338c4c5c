package substore

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/types"
)

func TestDecide(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)
	later := now.Add(time.Hour)

	tests := []struct {
		name     string
		existing *models.Subscription
		up       *EventUpdate
		want     applyDecision
	}{
		{
			name:     "newer event applies",
			existing: &models.Subscription{Status: types.SubscriptionStatusTrialing, LastEventAt: now},
			up:       &EventUpdate{Status: types.SubscriptionStatusActive, EventAt: later},
			want:     doWrite,
		},
		{
			name:     "stale event dropped",
			existing: &models.Subscription{Status: types.SubscriptionStatusCanceled, LastEventAt: now},
			up:       &EventUpdate{Status: types.SubscriptionStatusActive, EventAt: earlier},
			want:     skipStale,
		},
		{
			name:     "equal timestamp replay applies",
			existing: &models.Subscription{Status: types.SubscriptionStatusActive, LastEventAt: now},
			up:       &EventUpdate{Status: types.SubscriptionStatusActive, EventAt: now},
			want:     doWrite,
		},
		{
			name: "canceled absorbs same external id",
			existing: &models.Subscription{
				Status: types.SubscriptionStatusCanceled, LastEventAt: now,
				ExternalSubscriptionID: lo.ToPtr("sub_1"),
			},
			up: &EventUpdate{
				Status: types.SubscriptionStatusActive, EventAt: later,
				ExternalSubscriptionID: lo.ToPtr("sub_1"),
			},
			want: skipCanceled,
		},
		{
			name: "canceled absorbs event without external id",
			existing: &models.Subscription{
				Status: types.SubscriptionStatusCanceled, LastEventAt: now,
				ExternalSubscriptionID: lo.ToPtr("sub_1"),
			},
			up:   &EventUpdate{Status: types.SubscriptionStatusPastDue, EventAt: later},
			want: skipCanceled,
		},
		{
			name: "new external id reactivates as new subscription",
			existing: &models.Subscription{
				Status: types.SubscriptionStatusCanceled, LastEventAt: now,
				ExternalSubscriptionID: lo.ToPtr("sub_1"),
			},
			up: &EventUpdate{
				Status: types.SubscriptionStatusActive, EventAt: later,
				ExternalSubscriptionID: lo.ToPtr("sub_2"),
			},
			want: doWrite,
		},
		{
			name: "canceled replay stays idempotent",
			existing: &models.Subscription{
				Status: types.SubscriptionStatusCanceled, LastEventAt: now,
				ExternalSubscriptionID: lo.ToPtr("sub_1"),
			},
			up: &EventUpdate{
				Status: types.SubscriptionStatusCanceled, EventAt: now,
				ExternalSubscriptionID: lo.ToPtr("sub_1"),
			},
			want: doWrite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decide(tt.existing, tt.up))
		})
	}
}

func TestMerge_PreservesUnsetFields(t *testing.T) {
	existing := &models.Subscription{
		SerialNumber:           "R1-001",
		ExternalSubscriptionID: lo.ToPtr("sub_1"),
		ExternalCustomerID:     "cus_1",
		OwnerWallet:            lo.ToPtr("0xabc"),
		Status:                 types.SubscriptionStatusTrialing,
		PlanType:               "fleet",
	}
	at := time.Now()
	merge(existing, &EventUpdate{Status: types.SubscriptionStatusActive, EventAt: at})

	assert.Equal(t, types.SubscriptionStatusActive, existing.Status)
	assert.Equal(t, at, existing.LastEventAt)
	assert.Equal(t, "sub_1", *existing.ExternalSubscriptionID)
	assert.Equal(t, "cus_1", existing.ExternalCustomerID)
	assert.Equal(t, "0xabc", *existing.OwnerWallet)
	assert.Equal(t, "fleet", existing.PlanType)
}

func TestMerge_OverwritesProvidedFields(t *testing.T) {
	existing := &models.Subscription{
		SerialNumber:       "R1-001",
		ExternalCustomerID: "cus_1",
		Status:             types.SubscriptionStatusActive,
	}
	merge(existing, &EventUpdate{
		Status:                 types.SubscriptionStatusCanceled,
		ExternalSubscriptionID: lo.ToPtr("sub_9"),
		ExternalCustomerID:     "cus_2",
		PlanType:               "solo",
		EventAt:                time.Now(),
	})

	assert.Equal(t, types.SubscriptionStatusCanceled, existing.Status)
	assert.Equal(t, "sub_9", *existing.ExternalSubscriptionID)
	assert.Equal(t, "cus_2", existing.ExternalCustomerID)
	assert.Equal(t, "solo", existing.PlanType)
}
