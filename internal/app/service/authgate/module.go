package authgate

import "go.uber.org/fx"

// Module exposes the authorization gate via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(s *Service) Gate { return s }),
)
