package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/connectd/billing/pkg/config"
)

// KeyProvider resolves token verification keys from the identity provider's
// published JWKS. The key set refreshes in the background for key rotation.
type KeyProvider struct {
	jwks *keyfunc.JWKS
}

func NewKeyProvider(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *cfgpkg.Config) (*KeyProvider, error) {
	if cfg.Identity.JWKSURL == "" {
		l.Warnw("identity jwks url not configured, all bearer tokens will be rejected")
		return &KeyProvider{}, nil
	}
	jwks, err := keyfunc.Get(cfg.Identity.JWKSURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute,
		RefreshErrorHandler: func(err error) {
			l.Warnw("jwks refresh failed", "err", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks from %s: %w", cfg.Identity.JWKSURL, err)
	}
	l.Infow("jwks loaded", "url", cfg.Identity.JWKSURL)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			jwks.EndBackground()
			return nil
		},
	})
	return &KeyProvider{jwks: jwks}, nil
}

// Keyfunc is usable as a jwt.Keyfunc.
func (p *KeyProvider) Keyfunc(t *jwt.Token) (interface{}, error) {
	if p == nil || p.jwks == nil {
		return nil, errors.New("identity provider not configured")
	}
	return p.jwks.Keyfunc(t)
}

var Module = fx.Options(
	fx.Provide(NewKeyProvider),
)
