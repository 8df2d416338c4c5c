package reconciler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/internal/models"
	"github.com/connectd/billing/pkg/config"
	"github.com/connectd/billing/pkg/types"
)

const testSecret = "whsec_test"

// signPayload builds a provider signature header over the raw body, the
// same scheme the verification library checks.
func signPayload(t *testing.T, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// fakeStore applies event updates into an in-memory map with the same
// merge-on-upsert shape the real store uses.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[string]*models.Subscription
	applies int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*models.Subscription{}}
}

func (f *fakeStore) ApplyEvent(_ context.Context, up *substore.EventUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applies++
	row, ok := f.rows[up.SerialNumber]
	if !ok {
		row = &models.Subscription{ID: "fake", SerialNumber: up.SerialNumber}
		f.rows[up.SerialNumber] = row
	}
	row.Status = up.Status
	row.IsActive = up.Status.IsActive()
	row.LastEventAt = up.EventAt
	if up.ExternalSubscriptionID != nil {
		row.ExternalSubscriptionID = up.ExternalSubscriptionID
	}
	if up.ExternalCustomerID != "" {
		row.ExternalCustomerID = up.ExternalCustomerID
	}
	if up.PlanType != "" {
		row.PlanType = up.PlanType
	}
	return true, nil
}

func (f *fakeStore) GetBySerial(_ context.Context, serial string) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[serial], nil
}

func (f *fakeStore) GetByExternalID(_ context.Context, _ string) (*models.Subscription, error) {
	return nil, nil
}

func (f *fakeStore) ActivePairing(_ context.Context, _ string) (*models.DevicePairing, error) {
	return nil, nil
}

func (f *fakeStore) PairDevice(_ context.Context, _, _, _ string) (*models.DevicePairing, error) {
	return nil, nil
}

func (f *fakeStore) UnpairDevice(_ context.Context, _ string) error { return nil }

type fakeSink struct {
	mu       sync.Mutex
	statuses []models.WebhookEventLogStatus
}

func (f *fakeSink) Save(_ context.Context, row *models.WebhookEventLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, row.Status)
}

func newTestService(store substore.Store) *Service {
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = testSecret
	return NewService(cfg, store, &fakeSink{}, zap.NewNop().Sugar())
}

func eventJSON(eventType string, created int64, object string) []byte {
	return fmt.Appendf(nil,
		`{"id":"evt_%d","type":"%s","created":%d,"data":{"object":%s}}`,
		created, eventType, created, object)
}

func TestProcess_InvalidSignature(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	payload := eventJSON("checkout.session.completed", time.Now().Unix(),
		`{"id":"cs_1","metadata":{"serial_number":"R1-001"}}`)

	_, err := svc.Process(context.Background(), payload, "t=1,v1=deadbeef", "trace-1")
	require.ErrorIs(t, err, ErrSignature)
	assert.Zero(t, store.applies, "signature failure must perform no writes")
}

func TestProcess_CheckoutCompleted_CreatesActiveRow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	payload := eventJSON("checkout.session.completed", time.Now().Unix(),
		`{"id":"cs_1","customer":"cus_1","subscription":"sub_1","metadata":{"serial_number":"R1-001","plan_type":"fleet"}}`)

	out, err := svc.Process(context.Background(), payload, signPayload(t, payload), "trace-1")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, "R1-001", out.Serial)

	row := store.rows["R1-001"]
	require.NotNil(t, row)
	assert.Equal(t, types.SubscriptionStatusActive, row.Status)
	assert.True(t, row.IsActive)
	assert.Equal(t, "sub_1", *row.ExternalSubscriptionID)
	assert.Equal(t, "cus_1", row.ExternalCustomerID)
	assert.Equal(t, "fleet", row.PlanType)
}

func TestProcess_MissingSerial_AcknowledgedWithoutWrite(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	payload := eventJSON("customer.subscription.updated", time.Now().Unix(),
		`{"id":"sub_1","customer":"cus_1","status":"active","metadata":{}}`)

	out, err := svc.Process(context.Background(), payload, signPayload(t, payload), "trace-1")
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Zero(t, store.applies)
}

func TestProcess_UnhandledEventType_Acknowledged(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	payload := eventJSON("customer.created", time.Now().Unix(), `{"id":"cus_1"}`)

	out, err := svc.Process(context.Background(), payload, signPayload(t, payload), "trace-1")
	require.NoError(t, err)
	assert.True(t, out.Ignored)
	assert.Zero(t, store.applies)
}

func TestProcess_SubscriptionDeleted_CancelsRow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	created := time.Now().Unix()
	checkout := eventJSON("checkout.session.completed", created-10,
		`{"id":"cs_1","customer":"cus_1","subscription":"sub_1","metadata":{"serial_number":"R1-001"}}`)
	_, err := svc.Process(context.Background(), checkout, signPayload(t, checkout), "trace-1")
	require.NoError(t, err)

	deleted := eventJSON("customer.subscription.deleted", created,
		`{"id":"sub_1","customer":"cus_1","status":"canceled","metadata":{"serial_number":"R1-001"}}`)
	out, err := svc.Process(context.Background(), deleted, signPayload(t, deleted), "trace-2")
	require.NoError(t, err)
	assert.True(t, out.Applied)

	row := store.rows["R1-001"]
	require.NotNil(t, row)
	assert.Equal(t, types.SubscriptionStatusCanceled, row.Status)
	assert.False(t, row.IsActive)
}

func TestProcess_ReplayedEvent_LeavesRowUnchanged(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	payload := eventJSON("customer.subscription.updated", time.Now().Unix(),
		`{"id":"sub_1","customer":"cus_1","status":"active","metadata":{"serial_number":"R1-001","plan_type":"solo"}}`)

	_, err := svc.Process(context.Background(), payload, signPayload(t, payload), "trace-1")
	require.NoError(t, err)
	first := *store.rows["R1-001"]

	_, err = svc.Process(context.Background(), payload, signPayload(t, payload), "trace-2")
	require.NoError(t, err)
	second := *store.rows["R1-001"]

	assert.Equal(t, first, second)
}

func TestProcess_InvoicePaymentFailed_MarksPastDue(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	payload := eventJSON("invoice.payment_failed", time.Now().Unix(),
		`{"id":"in_1","customer":"cus_1","subscription":"sub_1","subscription_details":{"metadata":{"serial_number":"R1-001"}}}`)

	out, err := svc.Process(context.Background(), payload, signPayload(t, payload), "trace-1")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, types.SubscriptionStatusPastDue, store.rows["R1-001"].Status)
}

func TestProcess_OneAuditRowPerDelivery(t *testing.T) {
	store := newFakeStore()
	sink := &fakeSink{}
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = testSecret
	svc := NewService(cfg, store, sink, zap.NewNop().Sugar())

	handled := eventJSON("customer.subscription.updated", time.Now().Unix(),
		`{"id":"sub_1","customer":"cus_1","status":"active","metadata":{"serial_number":"R1-001"}}`)
	_, err := svc.Process(context.Background(), handled, signPayload(t, handled), "trace-1")
	require.NoError(t, err)

	require.Len(t, sink.statuses, 1)
	assert.Equal(t, models.WebhookEventLogStatusHandled, sink.statuses[0])

	ignored := eventJSON("customer.created", time.Now().Unix(), `{"id":"cus_1"}`)
	_, err = svc.Process(context.Background(), ignored, signPayload(t, ignored), "trace-2")
	require.NoError(t, err)

	require.Len(t, sink.statuses, 2)
	assert.Equal(t, models.WebhookEventLogStatusIgnored, sink.statuses[1])
}

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want types.SubscriptionStatus
	}{
		{"trialing", types.SubscriptionStatusTrialing},
		{"active", types.SubscriptionStatusActive},
		{"past_due", types.SubscriptionStatusPastDue},
		{"unpaid", types.SubscriptionStatusPastDue},
		{"canceled", types.SubscriptionStatusCanceled},
		{"incomplete_expired", types.SubscriptionStatusCanceled},
		{"incomplete", types.SubscriptionStatusIncomplete},
		{"something_new", types.SubscriptionStatusIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, mapProviderStatus(tt.in))
		})
	}
}
