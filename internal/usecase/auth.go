package usecase

import (
	"context"
	"errors"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/jwt"
	"travleap-core/internal/pkg/password"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTokenGeneration      = errors.New("token generation failed")
	ErrTokenValidation      = errors.New("token validation failed")
)

//go:generate mockgen -source=auth.go -destination=../../tests/mock/usecase/auth_mock.go -package=usecase

type AuthUseCase interface {
	Login(ctx context.Context, credentials account.Credentials) (string, *account.Account, error)
	GetCurrentAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error)
}

type authUseCaseImpl struct {
	accountRepo AccountRepository
	jwtService  *jwt.Service
	reader      db.DBTX
	clock       clock.Clock
}

func NewAuthUseCase(accountRepo AccountRepository, jwtService *jwt.Service, reader db.DBTX, clk clock.Clock) AuthUseCase {
	return &authUseCaseImpl{
		accountRepo: accountRepo,
		jwtService:  jwtService,
		reader:      reader,
		clock:       clk,
	}
}

func (a *authUseCaseImpl) Login(ctx context.Context, credentials account.Credentials) (string, *account.Account, error) {
	acc, err := a.validateAccount(ctx, credentials)
	if err != nil {
		return "", nil, err
	}

	token, err := a.jwtService.GenerateToken(acc.ID(), acc.Role())
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	if err := a.accountRepo.UpdateLastLogin(ctx, a.reader, acc.ID(), a.clock.Now()); err != nil {
		return "", nil, err
	}

	return token, acc, nil
}

func (a *authUseCaseImpl) validateAccount(ctx context.Context, credentials account.Credentials) (*account.Account, error) {
	acc, err := a.accountRepo.FindByEmail(ctx, a.reader, credentials.Email().Value())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrAuthenticationFailed
	}

	if !acc.IsActive() {
		return nil, ErrAccountInactive
	}

	if err := password.ComparePassword(acc.PasswordHash(), credentials.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

func (a *authUseCaseImpl) GetCurrentAccount(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	acc, err := a.accountRepo.FindByID(ctx, a.reader, accountID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive() {
		return nil, ErrAccountInactive
	}
	return acc, nil
}
