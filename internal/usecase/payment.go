package usecase

import (
	"context"
	"strings"

	"travleap-core/internal/pkg/errs"
)

const maxPaymentProofLen = 255

// PaymentVerifier checks the payment proof presented with a confirm before
// the hold settles.
type PaymentVerifier interface {
	Verify(ctx context.Context, proof string) error
}

// ProofChecker validates the shape of the proof reference. The gateway has
// already settled the charge by the time the client calls confirm; the
// reference is recorded on the reservation for reconciliation.
type ProofChecker struct{}

func NewProofChecker() PaymentVerifier {
	return ProofChecker{}
}

func (ProofChecker) Verify(_ context.Context, proof string) error {
	trimmed := strings.TrimSpace(proof)
	if trimmed == "" {
		return errs.Mark(errs.New("payment proof is required"), errs.ErrDomainValidation)
	}
	if len(trimmed) > maxPaymentProofLen {
		return errs.Mark(errs.New("payment proof reference is too long"), errs.ErrDomainValidation)
	}
	return nil
}
