// File: internal/infra/sched/poll_worker.go
package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/repository"
	"video-pipeline-monitor/internal/infra/worker"
	"video-pipeline-monitor/internal/usecase"
)

// errRetryInterval spaces polls after a surfaced find failure. The HTTP
// adapter already retried transient failures; the loop just slows down.
const errRetryInterval = 10 * time.Second

// PollWorker owns one polling goroutine per active watch. Each loop follows
// the poller's cadence table and has a single stop path: cancelling its
// context, whether because the daemon shuts down, the watch is removed, or
// the job settled for good.
type PollWorker struct {
	pollUC  usecase.TaskPollUseCase
	watches repository.WatchRepository
	pool    *worker.Pool
	refresh time.Duration
	log     *zerolog.Logger

	mu      sync.Mutex
	parent  context.Context
	running map[string]context.CancelFunc // by watch id
	wg      sync.WaitGroup
}

func NewPollWorker(
	pollUC usecase.TaskPollUseCase,
	watches repository.WatchRepository,
	pool *worker.Pool,
	refresh time.Duration,
	logger *zerolog.Logger,
) *PollWorker {
	compLog := logger.With().Str("component", "PollWorker").Logger()
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return &PollWorker{
		pollUC:  pollUC,
		watches: watches,
		pool:    pool,
		refresh: refresh,
		log:     &compLog,
		running: make(map[string]context.CancelFunc),
	}
}

// Run scans the watch store and keeps one loop per active watch until ctx is
// cancelled. It blocks; run it in a goroutine.
func (s *PollWorker) Run(ctx context.Context) error {
	s.mu.Lock()
	s.parent = ctx
	s.mu.Unlock()

	s.log.Info().Msg("poll worker started")
	s.scan(ctx)

	ticker := time.NewTicker(s.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("poll worker stopping")
			s.stopAll()
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// Kick ensures a loop is running for the watch, e.g. right after a successful
// resume so polling restarts without waiting for the next scan.
func (s *PollWorker) Kick(ctx context.Context, watchID string) {
	w, err := s.watches.FindByID(ctx, repository.NoTX, watchID)
	if err != nil || !w.Active {
		return
	}
	s.ensure(w)
}

func (s *PollWorker) scan(ctx context.Context) {
	active, err := s.watches.ListActive(ctx, repository.NoTX)
	if err != nil {
		s.log.Error().Err(err).Msg("watch scan failed")
		return
	}
	alive := make(map[string]bool, len(active))
	for _, w := range active {
		alive[w.ID] = true
		s.ensure(w)
	}

	// stop loops whose watch disappeared or was deactivated
	s.mu.Lock()
	for id, cancel := range s.running {
		if !alive[id] {
			cancel()
			delete(s.running, id)
		}
	}
	s.mu.Unlock()
}

func (s *PollWorker) ensure(w *model.Watch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parent == nil || s.parent.Err() != nil {
		return
	}
	if _, ok := s.running[w.ID]; ok {
		return
	}
	loopCtx, cancel := context.WithCancel(s.parent)
	s.running[w.ID] = cancel
	s.wg.Add(1)
	cp := *w
	go s.watchLoop(loopCtx, &cp)
}

func (s *PollWorker) stopAll() {
	s.mu.Lock()
	for id, cancel := range s.running {
		cancel()
		delete(s.running, id)
	}
	s.mu.Unlock()
}

func (s *PollWorker) remove(watchID string) {
	s.mu.Lock()
	if cancel, ok := s.running[watchID]; ok {
		cancel()
		delete(s.running, watchID)
	}
	s.mu.Unlock()
	s.pollUC.Forget(watchID)
}

type pollOut struct {
	res *usecase.PollResult
	err error
}

func (s *PollWorker) watchLoop(ctx context.Context, w *model.Watch) {
	defer s.wg.Done()
	log := s.log.With().Str("watch_id", w.ID).Logger()
	log.Debug().Msg("watch loop started")

	// Consecutive confirmations of a final (non-resumable) state. Paused is
	// resumable and keeps its slow cadence indefinitely.
	finalSeen := 0

	for {
		out := make(chan pollOut, 1)
		err := s.pool.Submit(func(tctx context.Context) error {
			res, err := s.pollUC.PollOnce(tctx, w)
			out <- pollOut{res: res, err: err}
			return nil
		})
		if err != nil {
			// pool saturated: try again shortly
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}

		var o pollOut
		select {
		case <-ctx.Done():
			return
		case o = <-out:
		}

		next := errRetryInterval
		if o.err != nil {
			log.Warn().Err(o.err).Msg("poll failed")
		} else {
			next = o.res.NextPoll
			if o.res.Task != nil {
				switch o.res.Task.Status {
				case model.TaskStatusCompleted, model.TaskStatusFailed:
					finalSeen++
				default:
					finalSeen = 0
				}
			}
		}

		if next == 0 {
			// no task and none ever observed: nothing to follow
			log.Debug().Msg("nothing to poll, loop ending")
			s.remove(w.ID)
			return
		}
		if finalSeen >= 2 {
			// settle confirmed; the watch is done
			log.Info().Str("task_id", w.TaskID).Msg("task settled, deactivating watch")
			if err := s.watches.Deactivate(ctx, repository.NoTX, w.ID); err != nil {
				log.Warn().Err(err).Msg("deactivate failed")
			}
			s.remove(w.ID)
			return
		}

		if !sleepCtx(ctx, next) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
