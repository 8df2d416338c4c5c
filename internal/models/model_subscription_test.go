package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectd/billing/pkg/types"
)

func TestSubscriptionBeforeSave_DerivesIsActive(t *testing.T) {
	tests := []struct {
		status types.SubscriptionStatus
		active bool
	}{
		{types.SubscriptionStatusIncomplete, false},
		{types.SubscriptionStatusTrialing, true},
		{types.SubscriptionStatusActive, true},
		{types.SubscriptionStatusPastDue, false},
		{types.SubscriptionStatusCanceled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			// IsActive deliberately set to the opposite to prove the hook
			// overrides whatever the caller put there.
			sub := &Subscription{SerialNumber: "R1-001", Status: tt.status, IsActive: !tt.active}
			require.NoError(t, sub.BeforeSave(nil))
			assert.Equal(t, tt.active, sub.IsActive)
		})
	}
}

func TestDevicePairingCurrent(t *testing.T) {
	var nilPairing *DevicePairing
	assert.False(t, nilPairing.Current())

	p := &DevicePairing{ConnectionID: "conn-1"}
	assert.True(t, p.Current())

	now := p.PairedAt
	p.UnpairedAt = &now
	assert.False(t, p.Current())
}
