//go:build unit || e2e

package builder

import (
	"time"

	"travleap-core/internal/domain/account"

	"github.com/google/uuid"
)

type AccountBuilder struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	Role          string
	PointsBalance int
	IsActive      bool
}

func NewAccountBuilder() *AccountBuilder {
	return &AccountBuilder{
		ID:            uuid.New(),
		Email:         "traveler@example.com",
		PasswordHash:  "hashed_password",
		Role:          "traveler",
		PointsBalance: 0,
		IsActive:      true,
	}
}

func (a *AccountBuilder) With(mutate func(*AccountBuilder)) *AccountBuilder {
	mutate(a)
	return a
}

func (a *AccountBuilder) WithBalance(balance int) *AccountBuilder {
	a.PointsBalance = balance
	return a
}

func (a *AccountBuilder) BuildDomain() (*account.Account, error) {
	email, err := account.NewEmail(a.Email)
	if err != nil {
		return nil, err
	}
	role, err := account.NewRole(a.Role)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return account.ReconstructAccount(a.ID, email, a.PasswordHash, role, a.PointsBalance, nil, a.IsActive, now, now), nil
}
