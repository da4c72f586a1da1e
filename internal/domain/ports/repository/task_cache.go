package repository

import (
	"context"

	"video-pipeline-monitor/internal/domain/model"
)

// TaskSnapshotCache holds the last observed task per watch. It is a pure
// read-through convenience for the admin API; the poller never trusts it over
// a live find.
type TaskSnapshotCache interface {
	Store(ctx context.Context, watchID string, task *model.VideoTask) error
	Get(ctx context.Context, watchID string) (*model.VideoTask, error)
	Delete(ctx context.Context, watchID string) error
}
