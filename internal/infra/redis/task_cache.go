package redis

import (
	"context"
	"encoding/json"
	"time"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/repository"
	"video-pipeline-monitor/internal/infra/metrics"
)

var _ repository.TaskSnapshotCache = (*TaskCache)(nil)

// TaskCache keeps the last observed task snapshot per watch, TTL-bounded.
// It only ever reflects what the poller saw; the server stays authoritative.
type TaskCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewTaskCache(client RedisClient, ttl time.Duration) *TaskCache {
	return &TaskCache{client: client, ttl: ttl}
}

func key(watchID string) string { return "task_snapshot:" + watchID }

func (c *TaskCache) Store(ctx context.Context, watchID string, task *model.VideoTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key(watchID), data, c.ttl); err != nil {
		metrics.IncCacheOp("store", "error")
		return err
	}
	metrics.IncCacheOp("store", "ok")
	return nil
}

func (c *TaskCache) Get(ctx context.Context, watchID string) (*model.VideoTask, error) {
	data, err := c.client.Get(ctx, key(watchID))
	if err != nil {
		if IsNil(err) {
			metrics.IncCacheOp("get", "miss")
			return nil, domain.ErrNotFound
		}
		metrics.IncCacheOp("get", "error")
		return nil, err
	}
	var task model.VideoTask
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, err
	}
	metrics.IncCacheOp("get", "hit")
	return &task, nil
}

func (c *TaskCache) Delete(ctx context.Context, watchID string) error {
	if err := c.client.Del(ctx, key(watchID)); err != nil {
		metrics.IncCacheOp("delete", "error")
		return err
	}
	metrics.IncCacheOp("delete", "ok")
	return nil
}
