package facade

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	"github.com/connectd/billing/internal/app/service/substore"
)

// stripeBackend serves operations by calling the payments provider
// directly. Reads come from the local mirror; mutations hit the provider
// and the local row catches up via webhooks.
type stripeBackend struct {
	store substore.Store
	pay   *client.API
	log   *zap.SugaredLogger
}

func newStripeBackend(store substore.Store, pay *client.API, log *zap.SugaredLogger) *stripeBackend {
	return &stripeBackend{store: store, pay: pay, log: log}
}

func (b *stripeBackend) Name() string { return "local" }

func (b *stripeBackend) Check(ctx context.Context, serial string) (*CheckResult, error) {
	row, err := b.store.GetBySerial(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	res := &CheckResult{Source: "local"}
	if row != nil {
		res.HasActiveSubscription = row.IsActive
		res.Subscription = infoFromRow(row)
	}
	return res, nil
}

func (b *stripeBackend) Activate(ctx context.Context, in *ActivateInput) (*Result, error) {
	if b.pay == nil {
		return nil, fmt.Errorf("%w: payments provider not configured", ErrUpstream)
	}
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: caller has no provider customer linkage", ErrValidation)
	}
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(in.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(in.PriceID)},
		},
	}
	params.Context = ctx
	params.AddMetadata("serial_number", in.Serial)
	sub, err := b.pay.Subscriptions.New(params)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	// The local row is created by the ensuing webhook; returning the
	// provider id lets the caller correlate.
	return &Result{Success: true, Data: map[string]string{"subscriptionId": sub.ID}}, nil
}

func (b *stripeBackend) Cancel(ctx context.Context, in *CancelInput) (*Result, error) {
	if b.pay == nil {
		return nil, fmt.Errorf("%w: payments provider not configured", ErrUpstream)
	}
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if in.Details != nil {
		params.CancellationDetails = &stripe.SubscriptionCancelCancellationDetailsParams{
			Feedback: stripe.String(string(in.Details.Feedback)),
		}
		if in.Details.Comment != "" {
			params.CancellationDetails.Comment = stripe.String(in.Details.Comment)
		}
	}
	if _, err := b.pay.Subscriptions.Cancel(in.SubscriptionID, params); err != nil {
		return nil, mapStripeErr(err)
	}
	return &Result{Success: true}, nil
}

func (b *stripeBackend) UpdatePlan(ctx context.Context, in *UpdatePlanInput) (*Result, error) {
	if b.pay == nil {
		return nil, fmt.Errorf("%w: payments provider not configured", ErrUpstream)
	}
	sub, err := b.getSubscription(ctx, in.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("%w: subscription %s has no items", ErrNotFound, in.SubscriptionID)
	}
	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(in.NewPriceID),
			},
		},
	}
	params.Context = ctx
	if in.ProrationDate != nil {
		params.ProrationDate = stripe.Int64(*in.ProrationDate)
	}
	if in.BillingCycleAnchor != nil {
		// The provider only supports resetting the anchor to "now" on an
		// existing subscription; any requested anchor resets it.
		params.BillingCycleAnchorNow = stripe.Bool(true)
	}
	updated, err := b.pay.Subscriptions.Update(in.SubscriptionID, params)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return &Result{Success: true, Data: map[string]string{"status": string(updated.Status)}}, nil
}

func (b *stripeBackend) ReleaseSchedule(ctx context.Context, in *ReleaseScheduleInput) (*Result, error) {
	if b.pay == nil {
		return nil, fmt.Errorf("%w: payments provider not configured", ErrUpstream)
	}
	sub, err := b.getSubscription(ctx, in.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Schedule == nil || sub.Schedule.ID == "" {
		return nil, fmt.Errorf("%w: subscription %s has no release schedule", ErrNotFound, in.SubscriptionID)
	}
	params := &stripe.SubscriptionScheduleReleaseParams{
		PreserveCancelDate: stripe.Bool(in.PreserveCancelDate),
	}
	params.Context = ctx
	if _, err := b.pay.SubscriptionSchedules.Release(sub.Schedule.ID, params); err != nil {
		return nil, mapStripeErr(err)
	}
	return &Result{Success: true}, nil
}

func (b *stripeBackend) ProductName(ctx context.Context, subscriptionID, _ string) (*Result, error) {
	if b.pay == nil {
		return nil, fmt.Errorf("%w: payments provider not configured", ErrUpstream)
	}
	sub, err := b.getSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil || sub.Items.Data[0].Price.Product == nil {
		return nil, fmt.Errorf("%w: subscription %s has no product", ErrNotFound, subscriptionID)
	}
	prodParams := &stripe.ProductParams{}
	prodParams.Context = ctx
	prod, err := b.pay.Products.Get(sub.Items.Data[0].Price.Product.ID, prodParams)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return &Result{Success: true, Data: map[string]string{"productName": prod.Name}}, nil
}

func (b *stripeBackend) getSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := b.pay.Subscriptions.Get(id, params)
	if err != nil {
		return nil, mapStripeErr(err)
	}
	return sub, nil
}

// mapStripeErr translates provider errors into the façade's error kinds.
func mapStripeErr(err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		switch sErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return ErrSessionExpired
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, sErr.Msg)
		}
		return fmt.Errorf("%w: %s", ErrUpstream, sErr.Msg)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
