package repository

import (
	"context"
	"time"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"

	"github.com/google/uuid"
)

type AccountRepository struct{}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

const accountSelect = `
SELECT id, email, password_hash, role, points_balance, last_login_at, is_active, created_at, updated_at
FROM accounts`

func (r *AccountRepository) Create(ctx context.Context, dbtx db.DBTX, acc *account.Account) error {
	const stmt = `
INSERT INTO accounts (id, email, password_hash, role, is_active)
VALUES ($1, $2, $3, $4, $5)`

	_, err := dbtx.Exec(ctx, stmt,
		acc.ID(), acc.Email().Value(), acc.PasswordHash(), acc.Role().String(), acc.IsActive())
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create account", err)
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*account.Account, error) {
	return r.scanOne(dbtx.QueryRow(ctx, accountSelect+` WHERE id = $1`, id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, dbtx db.DBTX, email string) (*account.Account, error) {
	return r.scanOne(dbtx.QueryRow(ctx, accountSelect+` WHERE email = $1`, email))
}

// FindByIDForUpdate takes a row lock so the ledger append and the cached
// balance update see a stable balance. Must run inside a transaction.
func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*account.Account, error) {
	return r.scanOne(dbtx.QueryRow(ctx, accountSelect+` WHERE id = $1 FOR UPDATE`, id))
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, dbtx db.DBTX, id uuid.UUID, at time.Time) error {
	const stmt = `UPDATE accounts SET last_login_at = $2, updated_at = now() WHERE id = $1`
	if _, err := dbtx.Exec(ctx, stmt, id, at); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

func (r *AccountRepository) scanOne(row interface{ Scan(dest ...any) error }) (*account.Account, error) {
	var (
		id            uuid.UUID
		emailStr      string
		passwordHash  string
		roleStr       string
		pointsBalance int
		lastLogin     *time.Time
		isActive      bool
		createdAt     time.Time
		updatedAt     time.Time
	)
	err := row.Scan(&id, &emailStr, &passwordHash, &roleStr, &pointsBalance, &lastLogin, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("account not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan account", err)
	}

	email, err := account.NewEmail(emailStr)
	if err != nil {
		return nil, infra.WrapRepoErr("stored email is invalid", err)
	}
	role, err := account.NewRole(roleStr)
	if err != nil {
		return nil, infra.WrapRepoErr("stored role is invalid", err)
	}

	return account.ReconstructAccount(id, email, passwordHash, role, pointsBalance, lastLogin, isActive, createdAt, updatedAt), nil
}
