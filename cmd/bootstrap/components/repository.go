package components

import (
	"travleap-core/internal/infra/db"
	"travleap-core/internal/infra/repository"
	"travleap-core/internal/usecase"
	"travleap-core/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			NewLockRepository,
			fx.As(new(usecase.LockRepository)),
		),
		fx.Annotate(
			repository.NewReservationRepository,
			fx.As(new(usecase.ReservationRepository)),
		),
		fx.Annotate(
			repository.NewResourceRepository,
			fx.As(new(usecase.ResourceRepository)),
		),
		fx.Annotate(
			repository.NewAccountRepository,
			fx.As(new(usecase.AccountRepository)),
		),
		fx.Annotate(
			repository.NewLedgerRepository,
			fx.As(new(usecase.LedgerRepository)),
		),
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(usecase.IdempotencyRepository)),
		),
		fx.Annotate(
			repository.NewNotificationRepository,
			fx.As(new(usecase.NotificationRepository)),
		),
		queries.NewReservationQueries,
		NewReader,
	),
)

// NewReader exposes the pool as the non-transactional query executor the
// usecases read through.
func NewReader(pool *pgxpool.Pool) db.DBTX {
	return pool
}

// Lock writes always run on the pool so a lock outlives, and is visible
// outside of, the transaction it guards.
func NewLockRepository(pool *pgxpool.Pool) *repository.LockRepository {
	return repository.NewLockRepository(db.DBTX(pool))
}
