package facade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/config"
	"github.com/connectd/billing/pkg/logctx"
	"github.com/connectd/billing/pkg/types"

	"github.com/stripe/stripe-go/v82/client"
)

// Error kinds the HTTP layer branches on. Anything else is folded into a
// Result with Success=false.
var (
	// ErrSessionExpired marks an upstream 401: the caller must
	// re-authenticate, retrying is pointless.
	ErrSessionExpired = errors.New("session expired, please re-authenticate")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrUpstream       = errors.New("upstream unavailable")
)

// Result is the normalized operation response, identical for both backends
// so calling code stays backend-agnostic.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubscriptionInfo is the caller-facing projection of a stored row.
type SubscriptionInfo struct {
	SerialNumber           string  `json:"serialNumber"`
	Status                 string  `json:"status"`
	PlanType               string  `json:"planType,omitempty"`
	IsActive               bool    `json:"isActive"`
	ExternalSubscriptionID *string `json:"externalSubscriptionId,omitempty"`
}

// CheckResult is the read-only status answer. Source names which system
// answered: "local" or "backend".
type CheckResult struct {
	HasActiveSubscription bool              `json:"hasActiveSubscription"`
	Subscription          *SubscriptionInfo `json:"subscription,omitempty"`
	Source                string            `json:"source"`
	Error                 string            `json:"error,omitempty"`
}

type ActivateInput struct {
	Serial      string
	PriceID     string
	CustomerID  string
	BearerToken string
}

type CancelInput struct {
	SubscriptionID string
	Details        *types.CancellationDetails
	BearerToken    string
}

type UpdatePlanInput struct {
	SubscriptionID     string
	NewPriceID         string
	ProrationDate      *int64
	BillingCycleAnchor *int64
	BearerToken        string
}

type ReleaseScheduleInput struct {
	SubscriptionID     string
	PreserveCancelDate bool
	BearerToken        string
}

// Backend is the fulfillment strategy. Exactly one implementation is
// selected at startup: direct payments-provider calls, or forwarding to the
// internal backend service.
type Backend interface {
	Name() string
	Check(ctx context.Context, serial string) (*CheckResult, error)
	Activate(ctx context.Context, in *ActivateInput) (*Result, error)
	Cancel(ctx context.Context, in *CancelInput) (*Result, error)
	UpdatePlan(ctx context.Context, in *UpdatePlanInput) (*Result, error)
	ReleaseSchedule(ctx context.Context, in *ReleaseScheduleInput) (*Result, error)
	ProductName(ctx context.Context, subscriptionID, bearerToken string) (*Result, error)
}

// Operations is the façade surface handlers depend on.
type Operations interface {
	Check(ctx context.Context, serial string) (*CheckResult, error)
	Activate(ctx context.Context, in *ActivateInput) (*Result, error)
	Cancel(ctx context.Context, in *CancelInput) (*Result, error)
	UpdatePlan(ctx context.Context, in *UpdatePlanInput) (*Result, error)
	ReleaseSchedule(ctx context.Context, in *ReleaseScheduleInput) (*Result, error)
	ProductName(ctx context.Context, subscriptionID, bearerToken string) (*Result, error)
}

type Service struct {
	backend Backend
	log     *zap.SugaredLogger
}

func NewService(cfg *config.Config, store substore.Store, pay *client.API, log *zap.SugaredLogger) *Service {
	var b Backend
	if cfg.Backend.ProxyEnabled {
		b = newProxyBackend(cfg, log)
	} else {
		b = newStripeBackend(store, pay, log)
	}
	log.Infow("subscription backend selected", "backend", b.Name())
	return &Service{backend: b, log: log}
}

// newWithBackend is the test seam.
func newWithBackend(b Backend, log *zap.SugaredLogger) *Service {
	return &Service{backend: b, log: log}
}

// Check is side-effect free: it never creates rows, whichever backend runs.
func (s *Service) Check(ctx context.Context, serial string) (*CheckResult, error) {
	if serial == "" {
		return nil, fmt.Errorf("%w: missing serial", ErrValidation)
	}
	res, err := s.backend.Check(ctx, serial)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		logctx.FromCtx(ctx, s.log).Errorw("check_failed", "serial", serial, "err", err)
		return &CheckResult{HasActiveSubscription: false, Source: s.backend.Name(), Error: err.Error()}, nil
	}
	return res, nil
}

func (s *Service) Activate(ctx context.Context, in *ActivateInput) (*Result, error) {
	if in == nil || in.Serial == "" || in.PriceID == "" {
		return nil, fmt.Errorf("%w: serial and priceId are required", ErrValidation)
	}
	res, err := s.backend.Activate(ctx, in)
	return s.normalize(ctx, "activate", res, err)
}

func (s *Service) Cancel(ctx context.Context, in *CancelInput) (*Result, error) {
	if in == nil || in.SubscriptionID == "" {
		return nil, fmt.Errorf("%w: missing subscription id", ErrValidation)
	}
	if in.Details != nil && !in.Details.Feedback.Valid() {
		return nil, fmt.Errorf("%w: unknown cancellation feedback %q", ErrValidation, in.Details.Feedback)
	}
	res, err := s.backend.Cancel(ctx, in)
	return s.normalize(ctx, "cancel", res, err)
}

func (s *Service) UpdatePlan(ctx context.Context, in *UpdatePlanInput) (*Result, error) {
	if in == nil || in.SubscriptionID == "" || in.NewPriceID == "" {
		return nil, fmt.Errorf("%w: subscriptionId and newPriceId are required", ErrValidation)
	}
	res, err := s.backend.UpdatePlan(ctx, in)
	return s.normalize(ctx, "update_plan", res, err)
}

func (s *Service) ReleaseSchedule(ctx context.Context, in *ReleaseScheduleInput) (*Result, error) {
	if in == nil || in.SubscriptionID == "" {
		return nil, fmt.Errorf("%w: missing subscription id", ErrValidation)
	}
	res, err := s.backend.ReleaseSchedule(ctx, in)
	return s.normalize(ctx, "release_schedule", res, err)
}

func (s *Service) ProductName(ctx context.Context, subscriptionID, bearerToken string) (*Result, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: missing subscription id", ErrValidation)
	}
	res, err := s.backend.ProductName(ctx, subscriptionID, bearerToken)
	return s.normalize(ctx, "product_name", res, err)
}

// normalize folds upstream failures into the common Result shape. Session
// expiry and validation problems pass through as errors so the HTTP layer
// can map them to 401/400.
func (s *Service) normalize(ctx context.Context, op string, res *Result, err error) (*Result, error) {
	if err == nil {
		return res, nil
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrValidation) {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Errorw("subscription_op_failed", "op", op, "err", err)
	return &Result{Success: false, Error: err.Error()}, nil
}

func infoFromRow(row *models.Subscription) *SubscriptionInfo {
	if row == nil {
		return nil
	}
	return &SubscriptionInfo{
		SerialNumber:           row.SerialNumber,
		Status:                 string(row.Status),
		PlanType:               row.PlanType,
		IsActive:               row.IsActive,
		ExternalSubscriptionID: row.ExternalSubscriptionID,
	}
}
