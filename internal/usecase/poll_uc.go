// File: internal/usecase/poll_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/adapter"
	"video-pipeline-monitor/internal/domain/ports/repository"
	"video-pipeline-monitor/internal/infra/logging"
	"video-pipeline-monitor/internal/infra/metrics"
)

// Polling cadence is a fixed finite-state table, deliberately not adaptive or
// exponential: job durations are bounded and short-interval polling against
// the pipeline API is cheap.
const (
	// PollIntervalLive applies while the job is pending or active.
	PollIntervalLive = 2 * time.Second
	// PollIntervalSettled applies once the job completed, failed or paused,
	// to confirm the state sticks and to catch late transitions.
	PollIntervalSettled = 10 * time.Second
	// PollIntervalBridge covers the task-creation race: a task id is known
	// locally but the find query came back empty.
	PollIntervalBridge = 3 * time.Second
)

// PollResult is the outcome of one poll tick. NextPoll == 0 means stop polling.
type PollResult struct {
	Task     *model.VideoTask
	NextPoll time.Duration
}

// MilestoneFunc is invoked the first time a task's progress crosses each of
// the 25/50/75/100 thresholds, letting a sibling view re-fetch derived state.
type MilestoneFunc func(ctx context.Context, w *model.Watch, threshold int)

type TaskPollUseCase interface {
	// PollOnce runs a single find-and-observe cycle for a watch.
	PollOnce(ctx context.Context, w *model.Watch) (*PollResult, error)
	// NextInterval evaluates the cadence table for the last observation.
	NextInterval(task *model.VideoTask, knownTaskID string) time.Duration
	// Forget drops in-memory milestone tracking for a watch.
	Forget(watchID string)
}

// Compile-time check
var _ TaskPollUseCase = (*pollUC)(nil)

type pollUC struct {
	api         adapter.PipelineAPIAdapter
	watches     repository.WatchRepository
	notifLog    repository.NotificationLogRepository
	cache       repository.TaskSnapshotCache
	notifier    adapter.Notifier
	onMilestone MilestoneFunc
	log         *zerolog.Logger

	mu         sync.Mutex
	milestones map[string]*milestoneState // keyed by watch id
}

// milestoneState tracks which thresholds already fired for the current task
// lifetime. A changed task id resets it.
type milestoneState struct {
	taskID string
	fired  map[int]bool
}

func NewTaskPollUseCase(
	api adapter.PipelineAPIAdapter,
	watches repository.WatchRepository,
	notifLog repository.NotificationLogRepository,
	cache repository.TaskSnapshotCache,
	notifier adapter.Notifier,
	onMilestone MilestoneFunc,
	logger *zerolog.Logger,
) *pollUC {
	return &pollUC{
		api:         api,
		watches:     watches,
		notifLog:    notifLog,
		cache:       cache,
		notifier:    notifier,
		onMilestone: onMilestone,
		log:         logger,
		milestones:  make(map[string]*milestoneState),
	}
}

func (p *pollUC) NextInterval(task *model.VideoTask, knownTaskID string) time.Duration {
	switch {
	case task != nil && task.Status.Live():
		return PollIntervalLive
	case task != nil && task.Status.Settled():
		return PollIntervalSettled
	case task == nil && knownTaskID != "":
		return PollIntervalBridge
	default:
		return 0
	}
}

func (p *pollUC) PollOnce(ctx context.Context, w *model.Watch) (*PollResult, error) {
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "PollUC.PollOnce")()

	start := time.Now()
	task, err := p.api.FindTask(ctx, w.UserID, w.ScriptID, w.VersionID)
	metrics.ObservePollLatency(int(time.Since(start) / time.Millisecond))
	if err != nil {
		metrics.IncPoll("error")
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task == nil {
		// Not-found is a legitimate "no task yet", never an error.
		metrics.IncPoll("no_task")
		return &PollResult{NextPoll: p.NextInterval(nil, w.TaskID)}, nil
	}
	metrics.IncPoll(string(task.Status))

	if task.ID != w.TaskID {
		// Fresh task lifetime: persist the id and reset milestone tracking.
		if err := p.watches.UpdateTaskID(ctx, repository.NoTX, w.ID, task.ID); err != nil {
			log.Warn().Err(err).Str("watch_id", w.ID).Msg("could not persist observed task id")
		}
		w.TaskID = task.ID
	}

	if err := p.cache.Store(ctx, w.ID, task); err != nil {
		log.Warn().Err(err).Str("watch_id", w.ID).Msg("snapshot cache store failed")
	}

	p.fireMilestones(ctx, w, task)

	if task.Status.Settled() {
		p.notifyOnce(ctx, w, task)
	}

	return &PollResult{Task: task, NextPoll: p.NextInterval(task, w.TaskID)}, nil
}

func (p *pollUC) Forget(watchID string) {
	p.mu.Lock()
	delete(p.milestones, watchID)
	p.mu.Unlock()
}

// fireMilestones invokes the refresh callback at most once per threshold per
// task lifetime.
func (p *pollUC) fireMilestones(ctx context.Context, w *model.Watch, task *model.VideoTask) {
	p.mu.Lock()
	st := p.milestones[w.ID]
	if st == nil || st.taskID != task.ID {
		st = &milestoneState{taskID: task.ID, fired: make(map[int]bool)}
		p.milestones[w.ID] = st
	}
	var crossed []int
	for _, t := range model.MilestoneThresholds {
		if task.Progress >= t && !st.fired[t] {
			st.fired[t] = true
			crossed = append(crossed, t)
		}
	}
	p.mu.Unlock()

	for _, t := range crossed {
		metrics.IncMilestone(t)
		if p.onMilestone != nil {
			p.onMilestone(ctx, w, t)
		}
	}
}

// notifyOnce delivers the terminal-state notification exactly once per
// (task id, kind), across polls and process restarts. The log record is
// written before delivery: missing a notification beats duplicating one.
func (p *pollUC) notifyOnce(ctx context.Context, w *model.Watch, task *model.VideoTask) {
	log := logging.With(ctx, p.log)
	kind := string(task.Status)

	exists, err := p.notifLog.Exists(ctx, repository.NoTX, task.ID, kind)
	if err != nil {
		log.Warn().Err(err).Str("task_id", task.ID).Msg("notification log lookup failed")
		return
	}
	if exists {
		return
	}
	if err := p.notifLog.Save(ctx, repository.NoTX, task.ID, w.UserID, kind); err != nil {
		if err == domain.ErrAlreadyExists {
			return // another poll loop won the race
		}
		log.Warn().Err(err).Str("task_id", task.ID).Msg("notification log save failed")
		return
	}

	n := buildNotification(w, task)
	if err := p.notifier.Notify(ctx, n); err != nil {
		log.Error().Err(err).Str("task_id", task.ID).Str("kind", kind).Msg("notification delivery failed")
		return
	}
	log.Info().Str("task_id", task.ID).Str("kind", kind).Msg("terminal state notified")
}

func buildNotification(w *model.Watch, task *model.VideoTask) adapter.Notification {
	n := adapter.Notification{
		UserID:   w.UserID,
		ScriptID: w.ScriptID,
		TaskID:   task.ID,
	}
	switch task.Status {
	case model.TaskStatusCompleted:
		n.Kind = adapter.NotifyCompleted
		n.Title = "Video ready"
		n.Body = fmt.Sprintf("Your video for script %s finished rendering.", w.ScriptID)
	case model.TaskStatusFailed:
		n.Kind = adapter.NotifyFailed
		n.Title = "Video generation failed"
		n.Body = fmt.Sprintf("Generation for script %s failed. You can retry the job.", w.ScriptID)
		if task.LastError != "" {
			n.Body = fmt.Sprintf("Generation for script %s failed: %s. You can retry the job.", w.ScriptID, task.LastError)
		}
	case model.TaskStatusPaused:
		n.Kind = adapter.NotifyPaused
		n.Title = "Video generation paused"
		n.Body = fmt.Sprintf("Generation for script %s is paused and waiting on you.", w.ScriptID)
		if len(task.PausedAnalyses) > 0 {
			titles := model.AnalysisStageTitles(task.PausedAnalyses)
			n.Body = fmt.Sprintf("Generation for script %s is paused at: %s.", w.ScriptID, strings.Join(titles, ", "))
		}
	}
	return n
}
