package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, taskID, userID, kind string) error {
	const q = `
INSERT INTO task_notifications (id, task_id, user_id, kind)
VALUES ($1, $2, $3, $4)`

	// The UNIQUE constraint on (task_id, kind) is the real dedup; racing
	// pollers lose cleanly with ErrAlreadyExists.
	_, err := execSQL(ctx, r.pool, tx, q, ulid.Make().String(), taskID, userID, kind)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *notificationLogRepo) Exists(ctx context.Context, tx repository.Tx, taskID, kind string) (bool, error) {
	const q = `
SELECT EXISTS(
    SELECT 1 FROM task_notifications
    WHERE task_id = $1 AND kind = $2
)`
	var exists bool
	row, err := pickRow(ctx, r.pool, tx, q, taskID, kind)
	if err != nil {
		return false, err
	}
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
