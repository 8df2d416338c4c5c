package eventlog

import "go.uber.org/fx"

// Module exposes the webhook event audit log via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
