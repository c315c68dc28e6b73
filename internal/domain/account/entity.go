package account

import (
	"time"

	"github.com/google/uuid"
)

// Account is both the holder identity and the points account: the cached
// points balance lives here, the ledger is the source of truth.
type Account struct {
	id            uuid.UUID
	email         Email
	passwordHash  string
	role          Role
	pointsBalance int
	lastLogin     *time.Time
	isActive      bool
	createdAt     time.Time
	updatedAt     time.Time
}

func NewAccount(email Email, passwordHash string, role Role) *Account {
	return &Account{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		isActive:     true,
	}
}

func ReconstructAccount(
	id uuid.UUID,
	email Email,
	passwordHash string,
	role Role,
	pointsBalance int,
	lastLogin *time.Time,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Account {
	return &Account{
		id:            id,
		email:         email,
		passwordHash:  passwordHash,
		role:          role,
		pointsBalance: pointsBalance,
		lastLogin:     lastLogin,
		isActive:      isActive,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (a *Account) ID() uuid.UUID         { return a.id }
func (a *Account) Email() Email          { return a.email }
func (a *Account) PasswordHash() string  { return a.passwordHash }
func (a *Account) Role() Role            { return a.role }
func (a *Account) PointsBalance() int    { return a.pointsBalance }
func (a *Account) LastLogin() *time.Time { return a.lastLogin }
func (a *Account) IsActive() bool        { return a.isActive }
func (a *Account) CreatedAt() time.Time  { return a.createdAt }
func (a *Account) UpdatedAt() time.Time  { return a.updatedAt }
