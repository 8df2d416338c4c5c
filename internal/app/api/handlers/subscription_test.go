package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectd/billing/internal/app/service/authgate"
	"github.com/connectd/billing/internal/app/service/facade"
	"github.com/connectd/billing/pkg/types"
)

type stubGate struct {
	decision authgate.Decision
	lastID   string
	lastTok  string
}

func (g *stubGate) AuthorizeSubscription(ctx context.Context, externalSubscriptionID, rawToken string) authgate.Decision {
	g.lastID, g.lastTok = externalSubscriptionID, rawToken
	return g.decision
}

func (g *stubGate) AuthorizeSerial(ctx context.Context, serial, rawToken string) authgate.Decision {
	g.lastID, g.lastTok = serial, rawToken
	return g.decision
}

type stubOps struct {
	check      *facade.CheckResult
	result     *facade.Result
	err        error
	cancels    []*facade.CancelInput
	activates  []*facade.ActivateInput
	lastSerial string
}

func (o *stubOps) Check(ctx context.Context, serial string) (*facade.CheckResult, error) {
	o.lastSerial = serial
	return o.check, o.err
}

func (o *stubOps) Activate(ctx context.Context, in *facade.ActivateInput) (*facade.Result, error) {
	o.activates = append(o.activates, in)
	return o.result, o.err
}

func (o *stubOps) Cancel(ctx context.Context, in *facade.CancelInput) (*facade.Result, error) {
	o.cancels = append(o.cancels, in)
	return o.result, o.err
}

func (o *stubOps) UpdatePlan(ctx context.Context, in *facade.UpdatePlanInput) (*facade.Result, error) {
	return o.result, o.err
}

func (o *stubOps) ReleaseSchedule(ctx context.Context, in *facade.ReleaseScheduleInput) (*facade.Result, error) {
	return o.result, o.err
}

func (o *stubOps) ProductName(ctx context.Context, subscriptionID, bearerToken string) (*facade.Result, error) {
	return o.result, o.err
}

func newSubscriptionRouter(t *testing.T, gate authgate.Gate, ops facade.Operations) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1/subscription"), gate, ops)
	return r
}

func TestCheckSubscription(t *testing.T) {
	ops := &stubOps{check: &facade.CheckResult{HasActiveSubscription: false, Source: "local"}}
	r := newSubscriptionRouter(t, &stubGate{}, ops)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/subscription/check?serial=R1-404", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var res facade.CheckResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.HasActiveSubscription)
	assert.Equal(t, "local", res.Source)
	assert.Equal(t, "R1-404", ops.lastSerial)
}

func TestCheckSubscriptionMissingSerial(t *testing.T) {
	r := newSubscriptionRouter(t, &stubGate{}, &stubOps{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/subscription/check", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelUnauthorized(t *testing.T) {
	gate := &stubGate{decision: authgate.Decision{Authorized: false, Reason: "caller does not own this subscription"}}
	ops := &stubOps{result: &facade.Result{Success: true}}
	r := newSubscriptionRouter(t, gate, ops)

	body := []byte(`{"subscriptionId":"sub_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/cancel", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer tkn")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var res OperationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "caller does not own this subscription", res.Error)
	// Denied requests must never reach the backend.
	assert.Empty(t, ops.cancels)
}

func TestCancelForwardsDetails(t *testing.T) {
	gate := &stubGate{decision: authgate.Decision{Authorized: true}}
	ops := &stubOps{result: &facade.Result{Success: true}}
	r := newSubscriptionRouter(t, gate, ops)

	body := []byte(`{"subscriptionId":"sub_1","cancellationDetails":{"feedback":"too_expensive","comment":"switching plans"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/cancel", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer tkn-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ops.cancels, 1)
	in := ops.cancels[0]
	assert.Equal(t, "sub_1", in.SubscriptionID)
	assert.Equal(t, "tkn-abc", in.BearerToken)
	require.NotNil(t, in.Details)
	assert.Equal(t, types.CancellationFeedbackTooExpensive, in.Details.Feedback)
	assert.Equal(t, "tkn-abc", gate.lastTok)
}

func TestCancelMissingID(t *testing.T) {
	r := newSubscriptionRouter(t, &stubGate{decision: authgate.Decision{Authorized: true}}, &stubOps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/cancel", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelSessionExpired(t *testing.T) {
	gate := &stubGate{decision: authgate.Decision{Authorized: true}}
	ops := &stubOps{err: facade.ErrSessionExpired}
	r := newSubscriptionRouter(t, gate, ops)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/cancel", bytes.NewReader([]byte(`{"subscriptionId":"sub_1"}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var res OperationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "session expired, please re-authenticate", res.Error)
}

func TestActivatePassesClaims(t *testing.T) {
	gate := &stubGate{decision: authgate.Decision{
		Authorized: true,
		Claims:     &authgate.Claims{CustomerID: "cus_9"},
	}}
	ops := &stubOps{result: &facade.Result{Success: true}}
	r := newSubscriptionRouter(t, gate, ops)

	body := []byte(`{"serial":"R1-001","priceId":"price_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscription/activate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ops.activates, 1)
	assert.Equal(t, "R1-001", ops.activates[0].Serial)
	assert.Equal(t, "cus_9", ops.activates[0].CustomerID)
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "", bearerToken(c))

	c.Request.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", bearerToken(c))

	c.Request.Header.Set("Authorization", "abc")
	assert.Equal(t, "", bearerToken(c))
}
