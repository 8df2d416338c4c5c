package facade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/config"
	"github.com/connectd/billing/pkg/types"
)

type stubBackend struct {
	cancelErr error
	cancelIn  *CancelInput
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Check(_ context.Context, _ string) (*CheckResult, error) {
	return &CheckResult{Source: "stub"}, nil
}

func (s *stubBackend) Activate(_ context.Context, _ *ActivateInput) (*Result, error) {
	return &Result{Success: true}, nil
}

func (s *stubBackend) Cancel(_ context.Context, in *CancelInput) (*Result, error) {
	s.cancelIn = in
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &Result{Success: true}, nil
}

func (s *stubBackend) UpdatePlan(_ context.Context, _ *UpdatePlanInput) (*Result, error) {
	return &Result{Success: true}, nil
}

func (s *stubBackend) ReleaseSchedule(_ context.Context, _ *ReleaseScheduleInput) (*Result, error) {
	return &Result{Success: true}, nil
}

func (s *stubBackend) ProductName(_ context.Context, _, _ string) (*Result, error) {
	return &Result{Success: true, Data: map[string]string{"productName": "Connect Pro"}}, nil
}

func TestServiceCancel_Validation(t *testing.T) {
	svc := newWithBackend(&stubBackend{}, zap.NewNop().Sugar())

	_, err := svc.Cancel(context.Background(), &CancelInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Cancel(context.Background(), &CancelInput{
		SubscriptionID: "sub_1",
		Details:        &types.CancellationDetails{Feedback: "changed_my_mind"},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestServiceCancel_SessionExpiredPassesThrough(t *testing.T) {
	svc := newWithBackend(&stubBackend{cancelErr: ErrSessionExpired}, zap.NewNop().Sugar())

	_, err := svc.Cancel(context.Background(), &CancelInput{SubscriptionID: "sub_1"})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestServiceCancel_UpstreamErrorNormalized(t *testing.T) {
	svc := newWithBackend(&stubBackend{cancelErr: fmt.Errorf("%w: boom", ErrUpstream)}, zap.NewNop().Sugar())

	res, err := svc.Cancel(context.Background(), &CancelInput{SubscriptionID: "sub_1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
}

func TestServiceCancel_ForwardsFeedback(t *testing.T) {
	stub := &stubBackend{}
	svc := newWithBackend(stub, zap.NewNop().Sugar())

	res, err := svc.Cancel(context.Background(), &CancelInput{
		SubscriptionID: "sub_1",
		Details: &types.CancellationDetails{
			Feedback: types.CancellationFeedbackTooExpensive,
			Comment:  "switching to annual next year",
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, stub.cancelIn.Details)
	assert.Equal(t, types.CancellationFeedbackTooExpensive, stub.cancelIn.Details.Feedback)
}

type checkStore struct {
	rows map[string]*models.Subscription
}

func (c *checkStore) GetBySerial(_ context.Context, serial string) (*models.Subscription, error) {
	return c.rows[serial], nil
}

func (c *checkStore) GetByExternalID(_ context.Context, _ string) (*models.Subscription, error) {
	return nil, nil
}

func (c *checkStore) ApplyEvent(_ context.Context, _ *substore.EventUpdate) (bool, error) {
	return false, errors.New("check must not write")
}

func (c *checkStore) ActivePairing(_ context.Context, _ string) (*models.DevicePairing, error) {
	return nil, nil
}

func (c *checkStore) PairDevice(_ context.Context, _, _, _ string) (*models.DevicePairing, error) {
	return nil, nil
}

func (c *checkStore) UnpairDevice(_ context.Context, _ string) error { return nil }

func TestStripeBackendCheck(t *testing.T) {
	store := &checkStore{rows: map[string]*models.Subscription{
		"R1-001": {
			SerialNumber:           "R1-001",
			Status:                 types.SubscriptionStatusActive,
			IsActive:               true,
			PlanType:               "fleet",
			ExternalSubscriptionID: lo.ToPtr("sub_1"),
		},
	}}
	b := newStripeBackend(store, nil, zap.NewNop().Sugar())

	res, err := b.Check(context.Background(), "R1-001")
	require.NoError(t, err)
	assert.True(t, res.HasActiveSubscription)
	assert.Equal(t, "local", res.Source)
	assert.Equal(t, "active", res.Subscription.Status)

	// Unknown serial answers negatively without creating anything.
	res, err = b.Check(context.Background(), "R9-999")
	require.NoError(t, err)
	assert.False(t, res.HasActiveSubscription)
	assert.Nil(t, res.Subscription)
	assert.Equal(t, "local", res.Source)
	assert.Empty(t, res.Error)
}

func newProxyFor(t *testing.T, srv *httptest.Server) *proxyBackend {
	t.Helper()
	cfg := &config.Config{}
	cfg.Backend.BaseURL = srv.URL
	return newProxyBackend(cfg, zap.NewNop().Sugar())
}

func TestProxyBackend_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	b := newProxyFor(t, srv)
	_, err := b.Cancel(context.Background(), &CancelInput{SubscriptionID: "sub_1", BearerToken: "tok"})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestProxyBackend_CancelForwardsBodyAndBearer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Result{Success: true})
	}))
	defer srv.Close()

	b := newProxyFor(t, srv)
	res, err := b.Cancel(context.Background(), &CancelInput{
		SubscriptionID: "sub_1",
		BearerToken:    "tok-123",
		Details: &types.CancellationDetails{
			Feedback: types.CancellationFeedbackUnused,
			Comment:  "sold the car",
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "sub_1", gotBody["subscriptionId"])
	details := gotBody["cancellationDetails"].(map[string]any)
	assert.Equal(t, "unused", details["feedback"])
	assert.Equal(t, "sold the car", details["comment"])
}

func TestProxyBackend_CheckSetsBackendSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "R1-001", r.URL.Query().Get("serial"))
		json.NewEncoder(w).Encode(CheckResult{HasActiveSubscription: true})
	}))
	defer srv.Close()

	b := newProxyFor(t, srv)
	res, err := b.Check(context.Background(), "R1-001")
	require.NoError(t, err)
	assert.True(t, res.HasActiveSubscription)
	assert.Equal(t, "backend", res.Source)
}

func TestProxyBackend_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := newProxyFor(t, srv)
	_, err := b.UpdatePlan(context.Background(), &UpdatePlanInput{SubscriptionID: "sub_1", NewPriceID: "price_2"})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestMapStripeErr_PlainError(t *testing.T) {
	err := mapStripeErr(errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrUpstream)
}
