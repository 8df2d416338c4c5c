package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/connectd/billing/pkg/config"
)

// proxyBackend forwards operations to the internal backend service,
// passing the caller's identity token through as the bearer credential.
type proxyBackend struct {
	baseURL string
	client  *http.Client
	log     *zap.SugaredLogger
}

func newProxyBackend(cfg *config.Config, log *zap.SugaredLogger) *proxyBackend {
	timeout := cfg.Backend.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &proxyBackend{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (b *proxyBackend) Name() string { return "backend" }

func (b *proxyBackend) Check(ctx context.Context, serial string) (*CheckResult, error) {
	path := "/internal/subscriptions/check?serial=" + url.QueryEscape(serial)
	var res CheckResult
	if err := b.do(ctx, http.MethodGet, path, "", nil, &res); err != nil {
		return nil, err
	}
	res.Source = "backend"
	return &res, nil
}

func (b *proxyBackend) Activate(ctx context.Context, in *ActivateInput) (*Result, error) {
	body := map[string]any{"serial": in.Serial, "priceId": in.PriceID}
	return b.doResult(ctx, http.MethodPost, "/internal/subscriptions/activate", in.BearerToken, body)
}

func (b *proxyBackend) Cancel(ctx context.Context, in *CancelInput) (*Result, error) {
	body := map[string]any{"subscriptionId": in.SubscriptionID}
	if in.Details != nil {
		body["cancellationDetails"] = map[string]string{
			"feedback": string(in.Details.Feedback),
			"comment":  in.Details.Comment,
		}
	}
	return b.doResult(ctx, http.MethodPost, "/internal/subscriptions/cancel", in.BearerToken, body)
}

func (b *proxyBackend) UpdatePlan(ctx context.Context, in *UpdatePlanInput) (*Result, error) {
	body := map[string]any{
		"subscriptionId": in.SubscriptionID,
		"newPriceId":     in.NewPriceID,
	}
	if in.ProrationDate != nil {
		body["prorationDate"] = *in.ProrationDate
	}
	if in.BillingCycleAnchor != nil {
		body["billingCycleAnchor"] = *in.BillingCycleAnchor
	}
	return b.doResult(ctx, http.MethodPost, "/internal/subscriptions/update_plan", in.BearerToken, body)
}

func (b *proxyBackend) ReleaseSchedule(ctx context.Context, in *ReleaseScheduleInput) (*Result, error) {
	body := map[string]any{
		"subscriptionId":       in.SubscriptionID,
		"preserve_cancel_date": in.PreserveCancelDate,
	}
	return b.doResult(ctx, http.MethodPost, "/internal/subscriptions/release_schedule", in.BearerToken, body)
}

func (b *proxyBackend) ProductName(ctx context.Context, subscriptionID, bearerToken string) (*Result, error) {
	path := "/internal/subscriptions/product_name?subscriptionId=" + url.QueryEscape(subscriptionID)
	return b.doResult(ctx, http.MethodGet, path, bearerToken, nil)
}

func (b *proxyBackend) doResult(ctx context.Context, method, path, bearer string, body any) (*Result, error) {
	var res Result
	if err := b.do(ctx, method, path, bearer, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *proxyBackend) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrUpstream, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrSessionExpired
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: backend returned 404", ErrNotFound)
	case resp.StatusCode >= 400:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: backend returned %d: %s", ErrUpstream, resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
