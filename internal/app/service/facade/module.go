package facade

import "go.uber.org/fx"

// Module exposes the subscription operation façade via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(s *Service) Operations { return s }),
)
