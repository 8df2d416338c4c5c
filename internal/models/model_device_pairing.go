package models

import (
	"time"
)

// DevicePairing records the link between a physical device (vehicle dongle)
// and the account that paired it. SubscriptionID is a weak reference, not
// ownership: at most one active subscription exists per connection, while
// canceled ones may remain for audit.
type DevicePairing struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ConnectionID string `gorm:"column:connection_id;type:varchar(64);not null;uniqueIndex" json:"connection_id"`
	SerialNumber string `gorm:"column:serial_number;type:varchar(64);not null;index" json:"serial_number"`
	// OwnerAccountID is the identity-provider subject of the account that
	// paired the device.
	OwnerAccountID string  `gorm:"column:owner_account_id;type:varchar(128);not null" json:"owner_account_id"`
	SubscriptionID *string `gorm:"column:subscription_id;type:uuid" json:"subscription_id"`
	// PairedAt and UnpairedAt bound the pairing's validity window; a nil
	// UnpairedAt means the pairing is current.
	PairedAt   time.Time  `gorm:"column:paired_at;not null" json:"paired_at"`
	UnpairedAt *time.Time `gorm:"column:unpaired_at" json:"unpaired_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (DevicePairing) TableName() string {
	return "connectd.device_pairing"
}

// Current reports whether the pairing window is open.
func (p *DevicePairing) Current() bool {
	return p != nil && p.UnpairedAt == nil
}
