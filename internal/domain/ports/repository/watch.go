package repository

import (
	"context"

	"video-pipeline-monitor/internal/domain/model"
)

type WatchRepository interface {
	Save(ctx context.Context, tx Tx, w *model.Watch) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Watch, error)
	FindByTriple(ctx context.Context, tx Tx, userID, scriptID, versionID string) (*model.Watch, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Watch, error)
	// UpdateTaskID records the task id observed for a watch. The caller treats
	// a changed id as a fresh task lifetime.
	UpdateTaskID(ctx context.Context, tx Tx, watchID, taskID string) error
	// TokenEncByUser returns the stored encrypted bearer token for a user.
	TokenEncByUser(ctx context.Context, tx Tx, userID string) (string, error)
	Deactivate(ctx context.Context, tx Tx, id string) error
	Delete(ctx context.Context, tx Tx, id string) error
}
