package usecase

import (
	"context"
	"time"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/domain/points"
	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/domain/resource"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/infra/repository"

	"github.com/google/uuid"
)

//go:generate mockgen -source=ports.go -destination=../../tests/mock/usecase/ports_mock.go -package=usecase

type ReservationRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	UpdateState(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expectedVersion int) (bool, error)
	SetVoucherCode(ctx context.Context, dbtx db.DBTX, id uuid.UUID, code string) error
	FindBlocking(ctx context.Context, dbtx db.DBTX, resourceID uuid.UUID, start, end time.Time, bufferMin int, excludeID *uuid.UUID) (*reservation.Reservation, error)
	FindExpiredHolds(ctx context.Context, dbtx db.DBTX, now time.Time, limit int) ([]*reservation.Reservation, error)
}

type ResourceRepository interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*resource.Resource, error)
	DecrementAvailable(ctx context.Context, dbtx db.DBTX, id uuid.UUID, units int) (bool, error)
	IncrementAvailable(ctx context.Context, dbtx db.DBTX, id uuid.UUID, units int) error
}

type AccountRepository interface {
	Create(ctx context.Context, dbtx db.DBTX, acc *account.Account) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*account.Account, error)
	FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*account.Account, error)
	FindByEmail(ctx context.Context, dbtx db.DBTX, email string) (*account.Account, error)
	UpdateLastLogin(ctx context.Context, dbtx db.DBTX, id uuid.UUID, at time.Time) error
}

type LedgerRepository interface {
	Append(ctx context.Context, dbtx db.DBTX, entry *points.Entry) error
	FindEarnByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*points.Entry, error)
	HasRefundForReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (bool, error)
	FindRefundByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*points.Entry, error)
	FindByAccount(ctx context.Context, dbtx db.DBTX, accountID uuid.UUID) ([]*points.Entry, error)
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, dbtx db.DBTX, key, holderID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	Get(ctx context.Context, dbtx db.DBTX, key, holderID uuid.UUID) (*repository.IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, dbtx db.DBTX, key, holderID, resultReservationID uuid.UUID) error
	Delete(ctx context.Context, dbtx db.DBTX, key, holderID uuid.UUID) error
	DeleteExpired(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}

// TxManager runs fn inside one store transaction, committing on nil error.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error
}

// Locker is the serialization primitive commands run their critical sections
// under.
type Locker interface {
	Acquire(ctx context.Context, key string) (string, error)
	Release(ctx context.Context, key, ownerToken string)
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
