//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/domain/points"
	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/infra/repository"
	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"
	"travleap-core/internal/usecase"
	"travleap-core/tests/common/builder"
	mockusecase "travleap-core/tests/mock/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	uc               usecase.BookingUseCase
	reservationRepo  *mockusecase.MockReservationRepository
	resourceRepo     *mockusecase.MockResourceRepository
	idempotencyRepo  *mockusecase.MockIdempotencyRepository
	notificationRepo *mockusecase.MockNotificationRepository
	accountRepo      *mockusecase.MockAccountRepository
	ledgerRepo       *mockusecase.MockLedgerRepository
	locker           *mockusecase.MockLocker
	txm              *mockusecase.MockTxManager
	clock            *clock.MockClock
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &bookingFixture{
		reservationRepo:  mockusecase.NewMockReservationRepository(ctrl),
		resourceRepo:     mockusecase.NewMockResourceRepository(ctrl),
		idempotencyRepo:  mockusecase.NewMockIdempotencyRepository(ctrl),
		notificationRepo: mockusecase.NewMockNotificationRepository(ctrl),
		accountRepo:      mockusecase.NewMockAccountRepository(ctrl),
		ledgerRepo:       mockusecase.NewMockLedgerRepository(ctrl),
		locker:           mockusecase.NewMockLocker(ctrl),
		txm:              mockusecase.NewMockTxManager(ctrl),
		clock:            clock.NewMockClock(testNow),
	}

	pointsService := usecase.NewPointsService(f.accountRepo, f.ledgerRepo, nil, config.PointsConfig{EarnRatePercent: 5})
	voucherIssuer, err := usecase.NewVoucherIssuer(f.reservationRepo, config.VoucherConfig{CodeLength: 8, MaxAttempts: 10})
	require.NoError(t, err)

	f.uc = usecase.NewBookingUseCase(
		f.reservationRepo,
		f.resourceRepo,
		f.idempotencyRepo,
		f.notificationRepo,
		pointsService,
		voucherIssuer,
		usecase.NewProofChecker(),
		f.locker,
		f.txm,
		nil,
		f.clock,
		config.HoldConfig{TTL: 15 * time.Minute},
	)
	return f
}

// expectLock passes the callback straight through, as a successfully
// acquired and released lock would.
func (f *bookingFixture) expectLock(key any) *gomock.Call {
	return f.locker.EXPECT().
		WithLock(gomock.Any(), key, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func (f *bookingFixture) expectTx() *gomock.Call {
	return f.txm.EXPECT().
		RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(db.DBTX) error) error {
			return fn(nil)
		})
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	actor := usecase.Actor{ID: uuid.New(), Role: account.RoleTraveler}
	idemKey := uuid.New()

	t.Run("places a hold with the configured expiry", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		cmd := usecase.ReserveCommand{
			ResourceID: rb.ID,
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      2,
		}

		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, "POST /api/reservations", gomock.Any(), testNow.Add(24*time.Hour)).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.expectLock(res.LockKey())
		f.expectTx()
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, cmd.Start, *cmd.End, rb.BufferMin, nil).
			Return(nil, nil)
		f.resourceRepo.EXPECT().DecrementAvailable(gomock.Any(), gomock.Any(), rb.ID, 2).Return(true, nil)
		f.reservationRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_held", "reservation", gomock.Any(), testNow).
			Return(nil)
		f.idempotencyRepo.EXPECT().
			UpdateStatusCompleted(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any()).
			Return(nil)

		created, err := f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusHold, created.Status())
		require.NotNil(t, created.HoldExpiresAt())
		assert.Equal(t, testNow.Add(15*time.Minute), *created.HoldExpiresAt())
		assert.Equal(t, 2*rb.UnitPriceCents, created.PriceCents())
	})

	t.Run("requires an idempotency key", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.uc.Reserve(ctx, actor, usecase.ReserveCommand{}, uuid.Nil)
		require.ErrorIs(t, err, errs.ErrIdempotencyKeyRequired)
	})

	t.Run("overlapping blocker rejects the hold before inventory moves", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		blocker, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.ResourceID = rb.ID
		}).BuildHold(testNow, time.Hour)
		require.NoError(t, err)
		cmd := usecase.ReserveCommand{
			ResourceID: rb.ID,
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.expectLock(res.LockKey())
		f.expectTx()
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, gomock.Any(), gomock.Any(), rb.BufferMin, nil).
			Return(blocker, nil)
		f.idempotencyRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			Return(nil)

		_, err = f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("no units left", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		cmd := usecase.ReserveCommand{
			ResourceID: rb.ID,
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.expectLock(res.LockKey())
		f.expectTx()
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, gomock.Any(), gomock.Any(), rb.BufferMin, nil).
			Return(nil, nil)
		f.resourceRepo.EXPECT().DecrementAvailable(gomock.Any(), gomock.Any(), rb.ID, 1).Return(false, nil)
		f.idempotencyRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			Return(nil)

		_, err = f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrSoldOut)
	})

	t.Run("failed attempt frees the claim for an honest retry", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		cmd := usecase.ReserveCommand{
			ResourceID: rb.ID,
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		// First attempt claims the key and fails on inventory.
		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.expectLock(res.LockKey())
		f.expectTx()
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, gomock.Any(), gomock.Any(), rb.BufferMin, nil).
			Return(nil, nil)
		f.resourceRepo.EXPECT().DecrementAvailable(gomock.Any(), gomock.Any(), rb.ID, 1).Return(false, nil)
		f.idempotencyRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			Return(nil)

		_, err = f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrSoldOut)

		// The freed claim lets the retry with the same key run to completion.
		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.expectLock(res.LockKey())
		f.expectTx()
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, gomock.Any(), gomock.Any(), rb.BufferMin, nil).
			Return(nil, nil)
		f.resourceRepo.EXPECT().DecrementAvailable(gomock.Any(), gomock.Any(), rb.ID, 1).Return(true, nil)
		f.reservationRepo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_held", "reservation", gomock.Any(), testNow).
			Return(nil)
		f.idempotencyRepo.EXPECT().
			UpdateStatusCompleted(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any()).
			Return(nil)

		created, err := f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusHold, created.Status())
	})

	t.Run("retry of a completed request replays the original reservation", func(t *testing.T) {
		f := newBookingFixture(t)
		existing, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildHold(testNow, 15*time.Minute)
		require.NoError(t, err)
		existingID := existing.ID()
		cmd := usecase.ReserveCommand{
			ResourceID: existing.ResourceID(),
			Start:      existing.TimeRange().Start(),
			End:        existing.TimeRange().End(),
			Units:      1,
		}

		var storedHash string
		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.DBTX, _, _ uuid.UUID, _ string, requestHash string, _ time.Time) error {
				storedHash = requestHash
				return infra.WrapRepoErr("key exists", nil, infra.KindDuplicateKey)
			})
		f.idempotencyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			DoAndReturn(func(_ context.Context, _ db.DBTX, _, _ uuid.UUID) (*repository.IdempotencyRecord, error) {
				return &repository.IdempotencyRecord{
					Key:                 idemKey,
					HolderID:            actor.ID,
					RequestHash:         storedHash,
					Status:              repository.IdempotencyStatusCompleted,
					ResultReservationID: &existingID,
				}, nil
			})
		f.reservationRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), existingID).Return(existing, nil)

		replayed, err := f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.NoError(t, err)
		assert.Equal(t, existingID, replayed.ID())
	})

	t.Run("same key with a different payload is rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		cmd := usecase.ReserveCommand{
			ResourceID: uuid.New(),
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(infra.WrapRepoErr("key exists", nil, infra.KindDuplicateKey))
		f.idempotencyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			Return(&repository.IdempotencyRecord{
				Key:         idemKey,
				HolderID:    actor.ID,
				RequestHash: "a different request hash",
				Status:      repository.IdempotencyStatusCompleted,
			}, nil)

		_, err := f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrDuplicateReservation)
	})

	t.Run("retry while the first attempt is still running", func(t *testing.T) {
		f := newBookingFixture(t)
		cmd := usecase.ReserveCommand{
			ResourceID: uuid.New(),
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		var storedHash string
		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.DBTX, _, _ uuid.UUID, _ string, requestHash string, _ time.Time) error {
				storedHash = requestHash
				return infra.WrapRepoErr("key exists", nil, infra.KindDuplicateKey)
			})
		f.idempotencyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			DoAndReturn(func(_ context.Context, _ db.DBTX, _, _ uuid.UUID) (*repository.IdempotencyRecord, error) {
				return &repository.IdempotencyRecord{
					Key:         idemKey,
					HolderID:    actor.ID,
					RequestHash: storedHash,
					Status:      repository.IdempotencyStatusProcessing,
				}, nil
			})

		_, err := f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrIdempotencyInProgress)
	})

	t.Run("busy resource lock surfaces untouched", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		cmd := usecase.ReserveCommand{
			ResourceID: rb.ID,
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.locker.EXPECT().
			WithLock(gomock.Any(), res.LockKey(), gomock.Any()).
			Return(errs.Mark(errs.New("lock held by another owner"), errs.ErrLockBusy))
		f.idempotencyRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			Return(nil)

		_, err = f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrLockBusy)
	})

	t.Run("unknown resource", func(t *testing.T) {
		f := newBookingFixture(t)
		cmd := usecase.ReserveCommand{
			ResourceID: uuid.New(),
			Start:      testNow.Add(24 * time.Hour),
			End:        timePtr(testNow.Add(26 * time.Hour)),
			Units:      1,
		}

		f.idempotencyRepo.EXPECT().
			TryInsert(gomock.Any(), gomock.Any(), idemKey, actor.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), cmd.ResourceID).
			Return(nil, infra.WrapRepoErr("no row", nil, infra.KindNotFound))
		f.idempotencyRepo.EXPECT().
			Delete(gomock.Any(), gomock.Any(), idemKey, actor.ID).
			Return(nil)

		_, err := f.uc.Reserve(ctx, actor, cmd, idemKey)
		require.ErrorIs(t, err, errs.ErrResourceNotFound)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	actor := usecase.Actor{ID: uuid.New(), Role: account.RoleTraveler}
	const proof = "pay_2026_03_0042"

	holdFor := func(t *testing.T, holderID uuid.UUID) *reservation.Reservation {
		t.Helper()
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = holderID
		}).BuildHold(testNow, 15*time.Minute)
		require.NoError(t, err)
		return entity
	}

	t.Run("settles the hold with voucher and points in one pass", func(t *testing.T) {
		f := newBookingFixture(t)
		entity := holdFor(t, actor.ID)
		acc := buildAccount(t, func(b *builder.AccountBuilder) {
			b.ID = actor.ID
			b.PointsBalance = 100
		})

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.reservationRepo.EXPECT().
			UpdateState(gomock.Any(), gomock.Any(), entity, 1).
			Return(true, nil)
		f.reservationRepo.EXPECT().
			SetVoucherCode(gomock.Any(), gomock.Any(), entity.ID(), gomock.Any()).
			Return(nil)
		f.accountRepo.EXPECT().
			FindByIDForUpdate(gomock.Any(), gomock.Any(), actor.ID).
			Return(acc, nil)
		f.ledgerRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_confirmed", "reservation", gomock.Any(), testNow).
			Return(nil)

		result, err := f.uc.Confirm(ctx, actor, entity.ID(), proof)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, result.Reservation.Status())
		assert.Len(t, result.VoucherCode, 8)
		assert.False(t, result.VoucherExisted)
		assert.Equal(t, 600, result.PointsEarned)
		require.NotNil(t, result.Reservation.PaymentProof())
		assert.Equal(t, proof, *result.Reservation.PaymentProof())
	})

	t.Run("replay on a settled reservation returns the stored voucher", func(t *testing.T) {
		f := newBookingFixture(t)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		entity.AttachVoucher("ABCD2345")
		acc := buildAccount(t, func(b *builder.AccountBuilder) {
			b.ID = actor.ID
			b.PointsBalance = 700
		})

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.accountRepo.EXPECT().
			FindByIDForUpdate(gomock.Any(), gomock.Any(), actor.ID).
			Return(acc, nil)
		f.ledgerRepo.EXPECT().
			Append(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(infra.WrapRepoErr("earn exists", nil, infra.KindDuplicateKey))

		result, err := f.uc.Confirm(ctx, actor, entity.ID(), proof)
		require.NoError(t, err)
		assert.Equal(t, "ABCD2345", result.VoucherCode)
		assert.True(t, result.VoucherExisted)
		assert.Zero(t, result.PointsEarned, "replay must not earn twice")
	})

	t.Run("lapsed hold is expired in place and reported", func(t *testing.T) {
		f := newBookingFixture(t)
		heldAt := testNow.Add(-20 * time.Minute)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildHold(heldAt, 15*time.Minute)
		require.NoError(t, err)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		var txCallbackErr error
		f.txm.EXPECT().
			RunInTx(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fn func(db.DBTX) error) error {
				txCallbackErr = fn(nil)
				return txCallbackErr
			})
		f.reservationRepo.EXPECT().
			UpdateState(gomock.Any(), gomock.Any(), entity, 1).
			Return(true, nil)
		f.resourceRepo.EXPECT().
			IncrementAvailable(gomock.Any(), gomock.Any(), entity.ResourceID(), entity.Units()).
			Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "hold_expired", "reservation", gomock.Any(), testNow).
			Return(nil)

		_, err = f.uc.Confirm(ctx, actor, entity.ID(), proof)
		require.ErrorIs(t, err, errs.ErrExpired)
		assert.Equal(t, reservation.StatusCancelled, entity.Status())
		// The cancellation, inventory restore and notification run inside the
		// transaction; a non-nil callback error would roll them all back.
		require.NoError(t, txCallbackErr, "expiry writes must commit")
	})

	t.Run("blank payment proof is rejected before any state write", func(t *testing.T) {
		f := newBookingFixture(t)
		entity := holdFor(t, actor.ID)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()

		_, err := f.uc.Confirm(ctx, actor, entity.ID(), "   ")
		require.ErrorIs(t, err, errs.ErrDomainValidation)
		assert.Equal(t, reservation.StatusHold, entity.Status())
	})

	t.Run("stale version loses the write", func(t *testing.T) {
		f := newBookingFixture(t)
		entity := holdFor(t, actor.ID)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.reservationRepo.EXPECT().
			UpdateState(gomock.Any(), gomock.Any(), entity, 1).
			Return(false, nil)

		_, err := f.uc.Confirm(ctx, actor, entity.ID(), proof)
		require.ErrorIs(t, err, errs.ErrVersionConflict)
	})

	t.Run("another traveler's reservation reads as absent", func(t *testing.T) {
		f := newBookingFixture(t)
		entity := holdFor(t, uuid.New())

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil)

		_, err := f.uc.Confirm(ctx, actor, entity.ID(), proof)
		require.ErrorIs(t, err, errs.ErrReservationNotFound)
	})

	t.Run("staff may confirm on behalf of the holder", func(t *testing.T) {
		f := newBookingFixture(t)
		staff := usecase.Actor{ID: uuid.New(), Role: account.RoleStaff}
		holderID := uuid.New()
		entity := holdFor(t, holderID)
		acc := buildAccount(t, func(b *builder.AccountBuilder) {
			b.ID = holderID
		})

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + holderID.String())
		f.expectTx()
		f.reservationRepo.EXPECT().UpdateState(gomock.Any(), gomock.Any(), entity, 1).Return(true, nil)
		f.reservationRepo.EXPECT().SetVoucherCode(gomock.Any(), gomock.Any(), entity.ID(), gomock.Any()).Return(nil)
		f.accountRepo.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any(), holderID).Return(acc, nil)
		f.ledgerRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_confirmed", "reservation", gomock.Any(), testNow).
			Return(nil)

		result, err := f.uc.Confirm(ctx, staff, entity.ID(), proof)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, result.Reservation.Status())
	})

	t.Run("unknown reservation", func(t *testing.T) {
		f := newBookingFixture(t)
		id := uuid.New()

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), id).
			Return(nil, infra.WrapRepoErr("no row", nil, infra.KindNotFound))

		_, err := f.uc.Confirm(ctx, actor, id, proof)
		require.ErrorIs(t, err, errs.ErrReservationNotFound)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	actor := usecase.Actor{ID: uuid.New(), Role: account.RoleTraveler}

	t.Run("cancelling a hold restores inventory, nothing to refund", func(t *testing.T) {
		f := newBookingFixture(t)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildHold(testNow, 15*time.Minute)
		require.NoError(t, err)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.reservationRepo.EXPECT().UpdateState(gomock.Any(), gomock.Any(), entity, 1).Return(true, nil)
		f.resourceRepo.EXPECT().
			IncrementAvailable(gomock.Any(), gomock.Any(), entity.ResourceID(), entity.Units()).
			Return(nil)
		f.ledgerRepo.EXPECT().
			FindEarnByReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(nil, infra.WrapRepoErr("no row", nil, infra.KindNotFound))
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_cancelled", "reservation", gomock.Any(), testNow).
			Return(nil)

		cancelled, err := f.uc.Cancel(ctx, actor, entity.ID(), "changed plans")
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, cancelled.Reservation.Status())
		require.NotNil(t, cancelled.Reservation.CancelReason())
		assert.Equal(t, "changed plans", *cancelled.Reservation.CancelReason())
		assert.Zero(t, cancelled.RefundedPoints, "a hold earned nothing to claw back")
	})

	t.Run("cancelling a confirmed reservation claws the earn back", func(t *testing.T) {
		f := newBookingFixture(t)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		acc := buildAccount(t, func(b *builder.AccountBuilder) {
			b.ID = actor.ID
			b.PointsBalance = 700
		})
		earn, err := points.NewEarn(actor.ID, 600, 100, entity.ID())
		require.NoError(t, err)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.reservationRepo.EXPECT().UpdateState(gomock.Any(), gomock.Any(), entity, 1).Return(true, nil)
		f.resourceRepo.EXPECT().
			IncrementAvailable(gomock.Any(), gomock.Any(), entity.ResourceID(), entity.Units()).
			Return(nil)
		f.ledgerRepo.EXPECT().
			FindEarnByReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(earn, nil)
		f.ledgerRepo.EXPECT().
			HasRefundForReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(false, nil)
		f.accountRepo.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any(), actor.ID).Return(acc, nil)
		f.ledgerRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_cancelled", "reservation", gomock.Any(), testNow).
			Return(nil)

		cancelled, err := f.uc.Cancel(ctx, actor, entity.ID(), "weather")
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, cancelled.Reservation.Status())
		assert.Equal(t, 600, cancelled.RefundedPoints)
	})

	t.Run("refund is capped at the remaining balance", func(t *testing.T) {
		f := newBookingFixture(t)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		// The holder spent points since earning; only 250 are left to claw back.
		acc := buildAccount(t, func(b *builder.AccountBuilder) {
			b.ID = actor.ID
			b.PointsBalance = 250
		})
		earn, err := points.NewEarn(actor.ID, 600, 100, entity.ID())
		require.NoError(t, err)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.reservationRepo.EXPECT().UpdateState(gomock.Any(), gomock.Any(), entity, 1).Return(true, nil)
		f.resourceRepo.EXPECT().
			IncrementAvailable(gomock.Any(), gomock.Any(), entity.ResourceID(), entity.Units()).
			Return(nil)
		f.ledgerRepo.EXPECT().
			FindEarnByReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(earn, nil)
		f.ledgerRepo.EXPECT().
			HasRefundForReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(false, nil)
		f.accountRepo.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any(), actor.ID).Return(acc, nil)
		f.ledgerRepo.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.notificationRepo.EXPECT().
			CreateJob(gomock.Any(), gomock.Any(), "reservation_cancelled", "reservation", gomock.Any(), testNow).
			Return(nil)

		cancelled, err := f.uc.Cancel(ctx, actor, entity.ID(), "weather")
		require.NoError(t, err)
		assert.Equal(t, 250, cancelled.RefundedPoints)
	})

	t.Run("cancel retry replays the recorded outcome without new writes", func(t *testing.T) {
		f := newBookingFixture(t)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		require.NoError(t, entity.Cancel("first"))
		recorded, err := points.NewRefund(actor.ID, 600, 700, entity.ID())
		require.NoError(t, err)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.ledgerRepo.EXPECT().
			FindRefundByReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(recorded, nil)

		cancelled, err := f.uc.Cancel(ctx, actor, entity.ID(), "second")
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, cancelled.Reservation.Status())
		require.NotNil(t, cancelled.Reservation.CancelReason())
		assert.Equal(t, "first", *cancelled.Reservation.CancelReason(), "the original reason stands")
		assert.Equal(t, 600, cancelled.RefundedPoints, "the originally recorded refund stands")
	})

	t.Run("cancel retry on a hold reports no refund", func(t *testing.T) {
		f := newBookingFixture(t)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
		}).BuildHold(testNow, 15*time.Minute)
		require.NoError(t, err)
		require.NoError(t, entity.Cancel("first"))

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectLock("points:" + actor.ID.String())
		f.expectTx()
		f.ledgerRepo.EXPECT().
			FindRefundByReservation(gomock.Any(), gomock.Any(), entity.ID()).
			Return(nil, infra.WrapRepoErr("no row", nil, infra.KindNotFound))

		cancelled, err := f.uc.Cancel(ctx, actor, entity.ID(), "second")
		require.NoError(t, err)
		assert.Zero(t, cancelled.RefundedPoints)
	})
}

func TestExtend(t *testing.T) {
	ctx := context.Background()
	actor := usecase.Actor{ID: uuid.New(), Role: account.RoleTraveler}

	t.Run("pushes the end later when the slot behind is free", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
			b.ResourceID = rb.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		newEnd := entity.TimeRange().End().Add(2 * time.Hour)
		excludeID := entity.ID()

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectTx()
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, entity.TimeRange().Start(), newEnd, rb.BufferMin, &excludeID).
			Return(nil, nil)
		f.reservationRepo.EXPECT().UpdateState(gomock.Any(), gomock.Any(), entity, 1).Return(true, nil)

		extended, err := f.uc.Extend(ctx, actor, entity.ID(), newEnd)
		require.NoError(t, err)
		require.NotNil(t, extended.TimeRange().End())
		assert.Equal(t, newEnd, *extended.TimeRange().End())
	})

	t.Run("a blocker behind the reservation rejects the extension", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
			b.ResourceID = rb.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		blocker, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.ResourceID = rb.ID
			start := entity.TimeRange().End().Add(time.Hour)
			end := start.Add(2 * time.Hour)
			b.Start = start
			b.End = &end
		}).BuildHold(testNow, time.Hour)
		require.NoError(t, err)
		newEnd := entity.TimeRange().End().Add(2 * time.Hour)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectTx()
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, gomock.Any(), newEnd, rb.BufferMin, gomock.Any()).
			Return(blocker, nil)

		_, err = f.uc.Extend(ctx, actor, entity.ID(), newEnd)
		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("shrinking is not extending", func(t *testing.T) {
		f := newBookingFixture(t)
		rb := builder.NewResourceBuilder()
		res, err := rb.BuildDomain()
		require.NoError(t, err)
		entity, err := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.HolderID = actor.ID
			b.ResourceID = rb.ID
		}).BuildConfirmed(testNow)
		require.NoError(t, err)
		newEnd := entity.TimeRange().End().Add(-time.Hour)

		f.reservationRepo.EXPECT().
			FindByID(gomock.Any(), gomock.Any(), entity.ID()).
			Return(entity, nil).
			Times(2)
		f.expectLock(entity.ResourceLockKey())
		f.expectTx()
		f.resourceRepo.EXPECT().FindByID(gomock.Any(), gomock.Any(), rb.ID).Return(res, nil)
		f.reservationRepo.EXPECT().
			FindBlocking(gomock.Any(), gomock.Any(), rb.ID, gomock.Any(), newEnd, rb.BufferMin, gomock.Any()).
			Return(nil, nil)

		_, err = f.uc.Extend(ctx, actor, entity.ID(), newEnd)
		require.ErrorIs(t, err, reservation.ErrInvalidTimeRange)
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
