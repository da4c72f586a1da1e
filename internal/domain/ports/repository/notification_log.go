package repository

import "context"

// NotificationLogRepository backs the exactly-once guarantee for terminal-state
// notifications: one record per (task id, kind), surviving process restarts.
type NotificationLogRepository interface {
	Save(ctx context.Context, tx Tx, taskID, userID, kind string) error
	Exists(ctx context.Context, tx Tx, taskID, kind string) (bool, error)
}
