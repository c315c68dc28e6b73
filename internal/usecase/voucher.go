package usecase

import (
	"context"
	"log/slog"

	"travleap-core/internal/domain/voucher"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"

	"github.com/google/uuid"
)

type VoucherReservationRepository interface {
	SetVoucherCode(ctx context.Context, dbtx db.DBTX, id uuid.UUID, code string) error
}

// VoucherIssuer attaches a short redeemable code to a confirmed reservation.
// Codes are random draws from a confusable-free alphabet; uniqueness is
// enforced by the store's unique index, not by a pre-check, so two concurrent
// draws of the same code resolve with exactly one winner and the loser draws
// again.
type VoucherIssuer struct {
	reservationRepo VoucherReservationRepository
	generator       *voucher.Generator
	maxAttempts     int
}

type IssueResult struct {
	Code           string
	AlreadyExisted bool
}

func NewVoucherIssuer(reservationRepo VoucherReservationRepository, cfg config.VoucherConfig) (*VoucherIssuer, error) {
	gen, err := voucher.NewGenerator(voucher.DefaultAlphabet, cfg.CodeLength)
	if err != nil {
		return nil, err
	}
	return &VoucherIssuer{
		reservationRepo: reservationRepo,
		generator:       gen,
		maxAttempts:     cfg.MaxAttempts,
	}, nil
}

// Issue returns the code now attached to the reservation. If a previous
// attempt already attached one (a confirm retry), that code is returned with
// AlreadyExisted set and no new draw happens.
func (v *VoucherIssuer) Issue(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID, existingCode *string) (*IssueResult, error) {
	if existingCode != nil {
		return &IssueResult{Code: *existingCode, AlreadyExisted: true}, nil
	}

	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		code, err := v.generator.Generate()
		if err != nil {
			return nil, errs.Wrap(err, "voucher code generation failed")
		}

		err = v.reservationRepo.SetVoucherCode(ctx, dbtx, reservationID, code)
		if err == nil {
			return &IssueResult{Code: code}, nil
		}
		if infra.IsKind(err, infra.KindDuplicateKey) {
			slog.Warn("voucher code collision, drawing again",
				"reservation_id", reservationID,
				"attempt", attempt)
			continue
		}
		return nil, err
	}

	// With an 8-char draw from a 31-char alphabet this indicates a broken
	// generator or a near-full code space, both operator problems.
	return nil, errs.Mark(
		errs.New("could not issue a unique voucher code"),
		errs.ErrTokenIssuanceExhausted,
	)
}
