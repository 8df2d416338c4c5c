package reconciler

import (
	"go.uber.org/fx"

	"github.com/connectd/billing/internal/app/service/eventlog"
)

// Module exposes the webhook reconciler via Fx.
var Module = fx.Options(
	fx.Provide(func(svc *eventlog.Service) EventSink { return svc }),
	fx.Provide(NewService),
)
