package bootstrap

import (
	"context"

	"travleap-core/cmd/bootstrap/components"
	"travleap-core/internal/usecase"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
	fx.Invoke(startHoldSweeper),
)

// startHoldSweeper ties the background expiry loop to the fx lifecycle.
func startHoldSweeper(lc fx.Lifecycle, sweeper *usecase.HoldSweeper) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweeper.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
