package app

import (
	"time"

	"github.com/connectd/billing/internal/app/api/server"
	"github.com/connectd/billing/internal/app/service/authgate"
	"github.com/connectd/billing/internal/app/service/eventlog"
	"github.com/connectd/billing/internal/app/service/facade"
	"github.com/connectd/billing/internal/app/service/reconciler"
	"github.com/connectd/billing/internal/app/service/substore"
	"github.com/connectd/billing/internal/platform/db"
	"github.com/connectd/billing/internal/platform/identity"
	"github.com/connectd/billing/internal/platform/payments"
	"github.com/connectd/billing/pkg/config"
	"github.com/connectd/billing/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payments.Module,
	identity.Module,
	server.Module,
	substore.Module,
	eventlog.Module,
	reconciler.Module,
	authgate.Module,
	facade.Module,
)
