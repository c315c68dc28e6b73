package repository

import (
	"context"
	"time"

	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
)

// NotificationRepository is the outbox: jobs land in the same transaction as
// the state change they announce, a downstream dispatcher picks them up.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, dbtx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	const stmt = `
INSERT INTO notification_jobs (kind, topic, payload, run_at)
VALUES ($1, $2, $3, $4)`

	if _, err := dbtx.Exec(ctx, stmt, kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
