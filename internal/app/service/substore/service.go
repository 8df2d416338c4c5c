package substore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/logctx"
	"github.com/connectd/billing/pkg/tool"
	"github.com/connectd/billing/pkg/types"
)

// EventUpdate is one reconciled billing event, reduced to the fields the
// local mirror tracks. Nil pointer fields mean "leave the stored value".
type EventUpdate struct {
	SerialNumber           string
	ExternalSubscriptionID *string
	ExternalCustomerID     string
	OwnerWallet            *string
	Status                 types.SubscriptionStatus
	PlanType               string
	// EventAt is the provider-side event timestamp, used to drop stale
	// out-of-order deliveries.
	EventAt time.Time
}

// Store is the local subscription mirror. GetBySerial and GetByExternalID
// return (nil, nil) when no row exists.
type Store interface {
	GetBySerial(ctx context.Context, serial string) (*models.Subscription, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error)
	// ApplyEvent upserts the row keyed by serial number. It reports whether
	// a write happened; guarded events (stale timestamp, canceled row) are
	// dropped without error.
	ApplyEvent(ctx context.Context, up *EventUpdate) (bool, error)
	ActivePairing(ctx context.Context, serial string) (*models.DevicePairing, error)
	PairDevice(ctx context.Context, connectionID, serial, ownerAccountID string) (*models.DevicePairing, error)
	UnpairDevice(ctx context.Context, connectionID string) error
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// New provides the Store interface for DI.
func New(db *gorm.DB, log *zap.SugaredLogger) Store {
	return NewService(db, log)
}

func (s *Service) GetBySerial(ctx context.Context, serial string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("serial_number = ?", serial).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription by serial: %w", err)
	}
	return &sub, nil
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("external_subscription_id = ?", externalID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription by external id: %w", err)
	}
	return &sub, nil
}

// eventColumns are the columns an ApplyEvent upsert may touch on conflict.
var eventColumns = []string{
	"external_subscription_id", "external_customer_id", "owner_wallet",
	"status", "plan_type", "is_active", "last_event_at", "updated_at",
}

func (s *Service) ApplyEvent(ctx context.Context, up *EventUpdate) (bool, error) {
	if up == nil || up.SerialNumber == "" {
		return false, fmt.Errorf("event update missing serial number")
	}

	var applied bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Subscription
		err := tx.Where("serial_number = ?", up.SerialNumber).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load existing row: %w", err)
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := rowFromUpdate(up)
			// Concurrent deliveries for the same serial may both miss the
			// read; the conflict clause turns the loser into an update.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "serial_number"}},
				DoUpdates: clause.AssignmentColumns(eventColumns),
			}).Create(row).Error; err != nil {
				return fmt.Errorf("failed to insert subscription row: %w", err)
			}
			applied = true
			return nil
		}

		switch decide(&existing, up) {
		case skipStale:
			logctx.FromCtx(ctx, s.log).Infow("event_skipped_stale",
				"serial", up.SerialNumber, "event_at", up.EventAt, "last_event_at", existing.LastEventAt)
			return nil
		case skipCanceled:
			logctx.FromCtx(ctx, s.log).Infow("event_skipped_canceled",
				"serial", up.SerialNumber, "status", up.Status)
			return nil
		}

		if !types.CanTransition(existing.Status, up.Status) {
			logctx.FromCtx(ctx, s.log).Warnw("abnormal_status_transition",
				"serial", up.SerialNumber, "from", existing.Status, "to", up.Status)
		}

		merge(&existing, up)
		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update subscription row: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply event for %s: %w", up.SerialNumber, err)
	}
	return applied, nil
}

type applyDecision int

const (
	doWrite applyDecision = iota
	skipStale
	skipCanceled
)

// decide is the guard between an incoming event and the stored row. Stale
// events (older than the last applied one) are dropped, and canceled rows
// absorb every later status for the same external subscription id. A
// different external id is a logically new subscription and may overwrite a
// canceled row.
func decide(existing *models.Subscription, up *EventUpdate) applyDecision {
	if up.EventAt.Before(existing.LastEventAt) {
		return skipStale
	}
	if existing.Status != types.SubscriptionStatusCanceled {
		return doWrite
	}
	if up.ExternalSubscriptionID != nil &&
		(existing.ExternalSubscriptionID == nil || *up.ExternalSubscriptionID != *existing.ExternalSubscriptionID) {
		return doWrite
	}
	if up.Status != types.SubscriptionStatusCanceled {
		return skipCanceled
	}
	return doWrite
}

func rowFromUpdate(up *EventUpdate) *models.Subscription {
	row := &models.Subscription{
		ID:                     tool.GenerateUUIDV7(),
		SerialNumber:           up.SerialNumber,
		ExternalSubscriptionID: up.ExternalSubscriptionID,
		ExternalCustomerID:     up.ExternalCustomerID,
		OwnerWallet:            up.OwnerWallet,
		Status:                 up.Status,
		PlanType:               up.PlanType,
		LastEventAt:            up.EventAt,
	}
	return row
}

func merge(existing *models.Subscription, up *EventUpdate) {
	existing.Status = up.Status
	existing.LastEventAt = up.EventAt
	if up.ExternalSubscriptionID != nil {
		existing.ExternalSubscriptionID = up.ExternalSubscriptionID
	}
	if up.ExternalCustomerID != "" {
		existing.ExternalCustomerID = up.ExternalCustomerID
	}
	if up.OwnerWallet != nil {
		existing.OwnerWallet = up.OwnerWallet
	}
	if up.PlanType != "" {
		existing.PlanType = up.PlanType
	}
}

func (s *Service) ActivePairing(ctx context.Context, serial string) (*models.DevicePairing, error) {
	var pairing models.DevicePairing
	err := s.db.WithContext(ctx).
		Where("serial_number = ? AND unpaired_at IS NULL", serial).
		First(&pairing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pairing: %w", err)
	}
	return &pairing, nil
}

func (s *Service) PairDevice(ctx context.Context, connectionID, serial, ownerAccountID string) (*models.DevicePairing, error) {
	pairing := &models.DevicePairing{
		ID:             tool.GenerateUUIDV7(),
		ConnectionID:   connectionID,
		SerialNumber:   serial,
		OwnerAccountID: ownerAccountID,
		PairedAt:       time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "connection_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"serial_number":    serial,
			"owner_account_id": ownerAccountID,
			"paired_at":        pairing.PairedAt,
			"unpaired_at":      nil,
		}),
	}).Create(pairing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to pair device: %w", err)
	}
	return pairing, nil
}

func (s *Service) UnpairDevice(ctx context.Context, connectionID string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.DevicePairing{}).
		Where("connection_id = ? AND unpaired_at IS NULL", connectionID).
		Update("unpaired_at", &now)
	if res.Error != nil {
		return fmt.Errorf("failed to unpair device: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no active pairing for connection %s", connectionID)
	}
	return nil
}
