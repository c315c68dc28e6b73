package response

import (
	"travleap-core/internal/domain/account"

	"github.com/google/uuid"
)

type AccountResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	PointsBalance int       `json:"points_balance"`
	IsActive      bool      `json:"is_active"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Account     AccountResponse `json:"account"`
}

func FromAccount(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID(),
		Email:         a.Email().Value(),
		Role:          a.Role().String(),
		PointsBalance: a.PointsBalance(),
		IsActive:      a.IsActive(),
	}
}
