package adapter

import "context"

// NotificationKind mirrors the settled task states a user is told about.
type NotificationKind string

const (
	NotifyCompleted NotificationKind = "completed"
	NotifyFailed    NotificationKind = "failed"
	NotifyPaused    NotificationKind = "paused"
)

type Notification struct {
	UserID   string
	ScriptID string
	TaskID   string
	Kind     NotificationKind
	Title    string
	Body     string
}

// Notifier delivers a user-facing notification. Implementations must be safe
// for concurrent use; the poller calls them from multiple watch loops.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
