package notify

import (
	"context"

	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain/ports/adapter"
	"video-pipeline-monitor/internal/infra/metrics"
)

// Compile-time check
var _ adapter.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the structured log. Default channel in
// dev and whenever no external channel is configured.
type LogNotifier struct {
	log *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n adapter.Notification) error {
	l.log.Info().
		Str("kind", string(n.Kind)).
		Str("user_id", n.UserID).
		Str("script_id", n.ScriptID).
		Str("task_id", n.TaskID).
		Str("title", n.Title).
		Msg(n.Body)
	metrics.IncNotification(string(n.Kind), "log")
	return nil
}
