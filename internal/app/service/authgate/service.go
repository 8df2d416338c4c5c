package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/internal/platform/identity"
	"github.com/connectd/billing/pkg/config"
	"github.com/connectd/billing/pkg/logctx"
)

// Claims are the identity-provider token claims the gate inspects. Which
// linkage fields are populated depends on how the account was provisioned.
type Claims struct {
	CustomerID string `json:"customer_id"`
	Wallet     string `json:"wallet_address"`
	jwt.RegisteredClaims
}

// Decision is the gate's verdict. The gate never returns an error past its
// boundary: every failure mode degrades to Authorized=false with a reason.
// Claims carries the verified caller identity on an authorized decision.
type Decision struct {
	Authorized bool    `json:"authorized"`
	Reason     string  `json:"reason,omitempty"`
	Claims     *Claims `json:"-"`
}

// Gate fronts every subscription-mutating operation. No mutation may bypass
// it.
type Gate interface {
	AuthorizeSubscription(ctx context.Context, externalSubscriptionID, rawToken string) Decision
	AuthorizeSerial(ctx context.Context, serial, rawToken string) Decision
}

type Service struct {
	cfg     *config.Config
	store   substore.Store
	pay     *client.API
	keyfunc jwt.Keyfunc
	log     *zap.SugaredLogger
}

func NewService(cfg *config.Config, store substore.Store, pay *client.API, keys *identity.KeyProvider, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, store: store, pay: pay, keyfunc: keys.Keyfunc, log: log}
}

func deny(reason string) Decision {
	return Decision{Authorized: false, Reason: reason}
}

func allow(claims *Claims) Decision {
	return Decision{Authorized: true, Claims: claims}
}

// ownerRecord is the subscription's recorded ownership linkage, merged from
// the local mirror and (when needed) the payments provider.
type ownerRecord struct {
	customerID string
	wallet     string
	serial     string
}

func (s *Service) AuthorizeSubscription(ctx context.Context, externalSubscriptionID, rawToken string) Decision {
	if externalSubscriptionID == "" {
		return deny("missing subscription id")
	}
	claims, err := s.verify(rawToken)
	if err != nil {
		return deny(fmt.Sprintf("invalid token: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()

	owner, err := s.resolveOwner(ctx, externalSubscriptionID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("owner_lookup_failed",
			"subscription_id", externalSubscriptionID, "err", err)
		return deny("owner lookup failed")
	}
	if owner == nil {
		return deny("subscription has no resolvable owner")
	}
	return s.match(ctx, claims, owner)
}

func (s *Service) AuthorizeSerial(ctx context.Context, serial, rawToken string) Decision {
	if serial == "" {
		return deny("missing serial")
	}
	claims, err := s.verify(rawToken)
	if err != nil {
		return deny(fmt.Sprintf("invalid token: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout())
	defer cancel()

	owner := &ownerRecord{serial: serial}
	if row, err := s.store.GetBySerial(ctx, serial); err == nil && row != nil {
		owner.customerID = row.ExternalCustomerID
		if row.OwnerWallet != nil {
			owner.wallet = *row.OwnerWallet
		}
	}
	return s.match(ctx, claims, owner)
}

// match checks the caller's resolved identity against the recorded owner by
// whichever linkage is present: provider customer id, wallet address, or
// device pairing.
func (s *Service) match(ctx context.Context, claims *Claims, owner *ownerRecord) Decision {
	if claims.CustomerID != "" && owner.customerID != "" && claims.CustomerID == owner.customerID {
		return allow(claims)
	}
	if claims.Wallet != "" && owner.wallet != "" && strings.EqualFold(claims.Wallet, owner.wallet) {
		return allow(claims)
	}
	if owner.serial != "" && claims.Subject != "" {
		pairing, err := s.store.ActivePairing(ctx, owner.serial)
		if err != nil {
			logctx.FromCtx(ctx, s.log).Warnw("pairing_lookup_failed", "serial", owner.serial, "err", err)
		} else if pairing.Current() && pairing.OwnerAccountID == claims.Subject {
			return allow(claims)
		}
	}
	return deny("caller does not own this subscription")
}

func (s *Service) resolveOwner(ctx context.Context, externalSubscriptionID string) (*ownerRecord, error) {
	row, err := s.store.GetByExternalID(ctx, externalSubscriptionID)
	if err != nil {
		return nil, err
	}
	if row != nil {
		owner := &ownerRecord{customerID: row.ExternalCustomerID, serial: row.SerialNumber}
		if row.OwnerWallet != nil {
			owner.wallet = *row.OwnerWallet
		}
		return owner, nil
	}
	if s.pay == nil {
		return nil, nil
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := s.pay.Subscriptions.Get(externalSubscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("provider subscription lookup: %w", err)
	}
	owner := &ownerRecord{
		serial: sub.Metadata["serial_number"],
		wallet: sub.Metadata["wallet_address"],
	}
	if sub.Customer != nil {
		owner.customerID = sub.Customer.ID
	}
	if owner.customerID == "" && owner.wallet == "" && owner.serial == "" {
		return nil, nil
	}
	return owner, nil
}

func (s *Service) verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, errors.New("missing bearer token")
	}
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.cfg.Identity.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Identity.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, claims, s.keyfunc, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	return claims, nil
}

func (s *Service) lookupTimeout() time.Duration {
	if s.cfg.Identity.LookupTimeout > 0 {
		return s.cfg.Identity.LookupTimeout
	}
	return 5 * time.Second
}
