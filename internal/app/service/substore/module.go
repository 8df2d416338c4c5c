package substore

import "go.uber.org/fx"

// Module exposes the subscription store via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
