// File: internal/usecase/resume_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/adapter"
	"video-pipeline-monitor/internal/domain/ports/repository"
	"video-pipeline-monitor/internal/infra/metrics"
)

type ResumeUseCase interface {
	// Resume attempts to continue a paused task and classifies the outcome.
	// The server rejects resumes against already-resumed tasks; the only
	// client-side dedup is an in-flight guard per watch.
	Resume(ctx context.Context, w *model.Watch) (*model.ResumeDecision, error)
	// Retry restarts a failed task and returns the fresh snapshot.
	Retry(ctx context.Context, w *model.Watch) (*model.VideoTask, error)
}

// Compile-time check
var _ ResumeUseCase = (*resumeUC)(nil)

type resumeUC struct {
	api     adapter.PipelineAPIAdapter
	watches repository.WatchRepository
	log     *zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{} // watch ids with a resume in flight
}

func NewResumeUseCase(api adapter.PipelineAPIAdapter, watches repository.WatchRepository, logger *zerolog.Logger) *resumeUC {
	return &resumeUC{
		api:      api,
		watches:  watches,
		log:      logger,
		inflight: make(map[string]struct{}),
	}
}

func (r *resumeUC) Resume(ctx context.Context, w *model.Watch) (*model.ResumeDecision, error) {
	if w.TaskID == "" {
		return nil, domain.ErrNoTaskForWatch
	}
	if !r.acquire(w.ID) {
		return nil, domain.ErrResumeInFlight
	}
	defer r.release(w.ID)

	res, err := r.api.ResumeTask(ctx, w.UserID, w.TaskID)
	if err != nil {
		var credit *adapter.InsufficientCreditsError
		if errors.As(err, &credit) {
			metrics.IncResume(string(model.ResumeOutcomeCreditBlocked))
			metrics.IncCreditBlock(credit.Credit.Context.Route)
			r.log.Info().Str("watch_id", w.ID).Str("task_id", w.TaskID).
				Int64("required", credit.Credit.Details.Required).
				Int64("available", credit.Credit.Details.Available).
				Msg("resume blocked on credits")
			ce := credit.Credit
			return &model.ResumeDecision{
				Outcome:     model.ResumeOutcomeCreditBlocked,
				CreditError: &ce,
			}, nil
		}
		metrics.IncResume("error")
		return nil, fmt.Errorf("resume task %s: %w", w.TaskID, err)
	}

	if !res.CanResume {
		metrics.IncResume(string(model.ResumeOutcomeNeedsConfiguration))
		return &model.ResumeDecision{
			Outcome:        model.ResumeOutcomeNeedsConfiguration,
			PausedAnalyses: res.AvailablePausedAnalyses,
			PausedTitles:   model.AnalysisStageTitles(res.AvailablePausedAnalyses),
			Suggestion:     res.Suggestion,
		}, nil
	}

	metrics.IncResume(string(model.ResumeOutcomeResumed))
	rt := model.ResumeType(res.ResumeType)
	if rt != model.ResumeTypeCheckpoint {
		rt = model.ResumeTypeFull
	}
	r.log.Info().Str("watch_id", w.ID).Str("task_id", w.TaskID).
		Str("resume_type", string(rt)).Int("carried_over", res.CompletedAnalyses).
		Msg("task resumed")
	return &model.ResumeDecision{
		Outcome:           model.ResumeOutcomeResumed,
		ResumeType:        rt,
		CompletedAnalyses: res.CompletedAnalyses,
	}, nil
}

func (r *resumeUC) Retry(ctx context.Context, w *model.Watch) (*model.VideoTask, error) {
	if w.TaskID == "" {
		return nil, domain.ErrNoTaskForWatch
	}
	task, err := r.api.RetryTask(ctx, w.UserID, w.TaskID)
	if err != nil {
		metrics.IncRetry("error")
		return nil, fmt.Errorf("retry task %s: %w", w.TaskID, err)
	}
	metrics.IncRetry("ok")

	// Retry creates a new task lifetime; persist the id right away so the
	// poller's bridge interval applies if the next find races the creation.
	if task.ID != "" && task.ID != w.TaskID {
		if err := r.watches.UpdateTaskID(ctx, repository.NoTX, w.ID, task.ID); err != nil {
			r.log.Warn().Err(err).Str("watch_id", w.ID).Msg("could not persist retried task id")
		}
		w.TaskID = task.ID
	}
	return task, nil
}

func (r *resumeUC) acquire(watchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[watchID]; busy {
		return false
	}
	r.inflight[watchID] = struct{}{}
	return true
}

func (r *resumeUC) release(watchID string) {
	r.mu.Lock()
	delete(r.inflight, watchID)
	r.mu.Unlock()
}
