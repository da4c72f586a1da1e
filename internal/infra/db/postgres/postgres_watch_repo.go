package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/repository"
)

var _ repository.WatchRepository = (*watchRepo)(nil)

type watchRepo struct {
	pool *pgxpool.Pool
}

func NewWatchRepo(pool *pgxpool.Pool) *watchRepo {
	return &watchRepo{pool: pool}
}

const watchColumns = `id, user_id, script_id, version_id, task_id, token_enc, active, created_at, updated_at`

func (r *watchRepo) Save(ctx context.Context, tx repository.Tx, w *model.Watch) error {
	w.UpdatedAt = time.Now()

	const q = `
INSERT INTO watches (id, user_id, script_id, version_id, task_id, token_enc, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  task_id = EXCLUDED.task_id,
  token_enc = EXCLUDED.token_enc,
  active = EXCLUDED.active,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		w.ID, w.UserID, w.ScriptID, w.VersionID, w.TaskID, w.TokenEnc, w.Active, w.CreatedAt, w.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		// unique (user_id, script_id, version_id) — triple already watched
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *watchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Watch, error) {
	const q = `SELECT ` + watchColumns + ` FROM watches WHERE id = $1`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanWatch(row)
}

func (r *watchRepo) FindByTriple(ctx context.Context, tx repository.Tx, userID, scriptID, versionID string) (*model.Watch, error) {
	const q = `SELECT ` + watchColumns + `
FROM watches WHERE user_id = $1 AND script_id = $2 AND version_id = $3`
	row, err := pickRow(ctx, r.pool, tx, q, userID, scriptID, versionID)
	if err != nil {
		return nil, err
	}
	return scanWatch(row)
}

func (r *watchRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Watch, error) {
	const q = `SELECT ` + watchColumns + ` FROM watches WHERE active ORDER BY created_at`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Watch
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *watchRepo) UpdateTaskID(ctx context.Context, tx repository.Tx, watchID, taskID string) error {
	const q = `UPDATE watches SET task_id = $2, updated_at = now() WHERE id = $1`
	tag, err := execSQL(ctx, r.pool, tx, q, watchID, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *watchRepo) TokenEncByUser(ctx context.Context, tx repository.Tx, userID string) (string, error) {
	// Any active watch of the user carries the same token; newest wins.
	const q = `
SELECT token_enc FROM watches
WHERE user_id = $1 AND active
ORDER BY updated_at DESC
LIMIT 1`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return "", err
	}
	var enc string
	if err := row.Scan(&enc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrReadDatabaseRow
	}
	return enc, nil
}

func (r *watchRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE watches SET active = false, updated_at = now() WHERE id = $1`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *watchRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM watches WHERE id = $1`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanWatch(row pgx.Row) (*model.Watch, error) {
	var w model.Watch
	err := row.Scan(&w.ID, &w.UserID, &w.ScriptID, &w.VersionID, &w.TaskID, &w.TokenEnc, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &w, nil
}
