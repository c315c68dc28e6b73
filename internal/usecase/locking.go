package usecase

import (
	"context"
	"log/slog"
	"time"

	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=locking.go -destination=../../tests/mock/usecase/locking_mock.go -package=usecase

type LockRepository interface {
	Acquire(ctx context.Context, key, ownerToken string, ttl time.Duration, now time.Time) (bool, error)
	Release(ctx context.Context, key, ownerToken string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LockManager serializes work on a key (one resource, one points account)
// through a conditional store write. Acquisition is non-blocking: a live lock
// held by someone else fails fast with ErrLockBusy and the caller retries.
// Expired locks are reclaimed in the same write, so a crashed holder stalls
// the key for at most one TTL.
type LockManager struct {
	repo  LockRepository
	clock clock.Clock
	ttl   time.Duration
}

func NewLockManager(repo LockRepository, clk clock.Clock, cfg config.LockConfig) *LockManager {
	return &LockManager{
		repo:  repo,
		clock: clk,
		ttl:   cfg.TTL,
	}
}

// Acquire returns the owner token on success. The token is required for
// release so a holder whose lock expired and was reacquired by another
// process cannot release the new holder's lock.
func (m *LockManager) Acquire(ctx context.Context, key string) (string, error) {
	ownerToken := uuid.NewString()

	ok, err := m.repo.Acquire(ctx, key, ownerToken, m.ttl, m.clock.Now())
	if err != nil {
		return "", errs.Wrap(err, "lock acquisition failed")
	}
	if !ok {
		return "", errs.Mark(errs.New("lock held by another owner: "+key), errs.ErrLockBusy)
	}
	return ownerToken, nil
}

func (m *LockManager) Release(ctx context.Context, key, ownerToken string) {
	released, err := m.repo.Release(ctx, key, ownerToken)
	if err != nil {
		// Safe to drop: an unreleased lock expires after the TTL.
		slog.Warn("failed to release lock", "key", key, "error", err)
		return
	}
	if !released {
		slog.Warn("lock was not held at release, TTL may have lapsed", "key", key)
	}
}

// WithLock runs fn while holding the key and always releases afterwards,
// error or not.
func (m *LockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ownerToken, err := m.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer m.Release(ctx, key, ownerToken)

	return fn(ctx)
}

// SweepExpired clears expired rows so the lock table does not grow without
// bound. Reclamation itself does not depend on it.
func (m *LockManager) SweepExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.clock.Now())
}
