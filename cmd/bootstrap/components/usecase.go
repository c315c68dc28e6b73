package components

import (
	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/usecase"
	"travleap-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		fx.Annotate(
			shared.NewPgxTxManager,
			fx.As(new(usecase.TxManager)),
		),
		func(cfg config.Config) config.LockConfig { return cfg.Lock },
		func(cfg config.Config) config.HoldConfig { return cfg.Hold },
		func(cfg config.Config) config.PointsConfig { return cfg.Points },
		func(cfg config.Config) config.VoucherConfig { return cfg.Voucher },
		func(cfg config.Config) config.FeesConfig { return cfg.Fees },
		usecase.NewLockManager,
		func(m *usecase.LockManager) usecase.Locker { return m },
		usecase.NewVoucherIssuer,
		usecase.NewProofChecker,
		usecase.NewPointsService,
		func(s *usecase.PointsService) usecase.PointsUseCase { return s },
		usecase.NewBookingUseCase,
		usecase.NewInspectionUseCase,
		usecase.NewHoldSweeper,
		usecase.NewAuthUseCase,
		usecase.NewTokenValidator,
	),
)
