package request

import (
	"travleap-core/internal/domain/account"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (r *LoginRequest) ToDomain() (account.Credentials, error) {
	return account.NewCredentials(r.Email, r.Password)
}
