package payments

import (
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/connectd/billing/pkg/config"
)

// NewClient constructs the payments-provider API client explicitly so its
// lifecycle is owned by the container, not a package-level singleton.
// Returns nil when no secret key is configured (proxy-only deployments);
// callers must treat a nil client as "direct provider calls unavailable".
func NewClient(l *zap.SugaredLogger, cfg *cfgpkg.Config) *client.API {
	if cfg.Stripe.SecretKey == "" {
		l.Warnw("stripe secret key not configured, direct provider calls disabled")
		return nil
	}
	api := &client.API{}
	api.Init(cfg.Stripe.SecretKey, nil)
	l.Infow("stripe client initialized")
	return api
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
