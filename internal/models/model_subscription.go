package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/connectd/billing/pkg/types"
)

// Subscription is the local mirror of a provider-side subscription, keyed by
// the device serial number. The payments provider owns the authoritative
// object; this row is a materialized view kept in sync by the webhook
// reconciler.
type Subscription struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// SerialNumber is the business key correlating billing events with the
	// paired device, independent of provider ids.
	SerialNumber string `gorm:"column:serial_number;type:varchar(64);not null;uniqueIndex" json:"serial_number"`
	// ExternalSubscriptionID is nullable: a row may exist before the device
	// was ever billed through the provider.
	ExternalSubscriptionID *string                  `gorm:"column:external_subscription_id;type:varchar(128);index" json:"external_subscription_id"`
	ExternalCustomerID     string                   `gorm:"column:external_customer_id;type:varchar(128)" json:"external_customer_id"`
	OwnerWallet            *string                  `gorm:"column:owner_wallet;type:varchar(128)" json:"owner_wallet"`
	Status                 types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	PlanType               string                   `gorm:"column:plan_type;type:varchar(64)" json:"plan_type"`
	// IsActive is derived from Status in BeforeSave; callers must not set it
	// independently.
	IsActive bool `gorm:"column:is_active;not null" json:"is_active"`
	// LastEventAt is the provider timestamp of the newest event applied to
	// this row. Older events are ignored.
	LastEventAt time.Time      `gorm:"column:last_event_at" json:"last_event_at"`
	Extra       datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "connectd.subscription"
}

// BeforeSave keeps IsActive in lockstep with Status.
func (s *Subscription) BeforeSave(tx *gorm.DB) error {
	s.IsActive = s.Status.IsActive()
	return nil
}
