//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestAccount(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	accountID := uuid.New()
	ctx := context.Background()

	// bcrypt hash of "password123"
	passwordHash := "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."
	tag, err := db.Exec(ctx, "INSERT INTO accounts (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		accountID, email, passwordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM accounts WHERE email = $1", email).Scan(&accountID)
	}

	return accountID
}

func CreateTestResource(t *testing.T, db DBLike, resourceType, name string, capacity, bufferMin, unitPriceCents int) uuid.UUID {
	t.Helper()

	resourceID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO resources (id, resource_type, name, capacity, available, buffer_min, unit_price_cents) VALUES ($1, $2, $3, $4, $4, $5, $6)",
		resourceID, resourceType, name, capacity, bufferMin, unitPriceCents)
	require.NoError(t, err)

	return resourceID
}

func SetAccountBalance(t *testing.T, db DBLike, accountID uuid.UUID, balance int) {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, "UPDATE accounts SET points_balance = $2 WHERE id = $1", accountID, balance)
	require.NoError(t, err)
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
