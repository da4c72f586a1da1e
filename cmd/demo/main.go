// Demo: runs the monitor against an in-process fake pipeline API.
// The fake task moves pending → active → paused, accepts one resume, then
// finishes, exercising the full cadence table and the notify-once path.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"video-pipeline-monitor/internal/config"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/infra/adapters/auth"
	"video-pipeline-monitor/internal/infra/adapters/notify"
	"video-pipeline-monitor/internal/infra/adapters/taskapi"
	"video-pipeline-monitor/internal/infra/logging"
	"video-pipeline-monitor/internal/infra/metrics"
	"video-pipeline-monitor/internal/infra/sched"
	"video-pipeline-monitor/internal/infra/worker"
	"video-pipeline-monitor/internal/usecase"
)

type fakePipeline struct {
	mu    sync.Mutex
	task  model.VideoTask
	polls int
}

func (f *fakePipeline) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/find", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.polls++
		// advance the fake job a bit on every poll
		if f.task.Status == model.TaskStatusPending && f.polls > 2 {
			f.task.Status = model.TaskStatusActive
		}
		if f.task.Status == model.TaskStatusActive {
			f.task.Progress += 17
			if f.task.Progress >= 40 && f.task.Progress < 60 {
				f.task.Status = model.TaskStatusPaused
				f.task.PausedAnalyses = []string{"imageGen", "audioGen"}
			}
			if f.task.Progress >= 100 {
				f.task.Progress = 100
				f.task.Status = model.TaskStatusCompleted
			}
		}
		f.task.UpdatedAt = time.Now()
		json.NewEncoder(w).Encode(map[string]any{"task": f.task, "jobStatus": string(f.task.Status), "type": "video"})
	})
	mux.HandleFunc("/tasks/demo-task/resume", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.task.Status = model.TaskStatusActive
		f.task.PausedAnalyses = nil
		json.NewEncoder(w).Encode(map[string]any{
			"success": true, "canResume": true, "resumeType": "checkpoint", "completedAnalyses": 2,
		})
	})
	return mux
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	logger := logging.New(config.LogConfig{Level: "debug", Format: "console"}, true)
	metrics.MustRegister()

	fake := &fakePipeline{task: model.VideoTask{
		ID: "demo-task", Status: model.TaskStatusPending, CreatedAt: time.Now(),
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	watches := newMemWatchRepo()
	notifLog := newMemNotifLog()
	cache := newMemTaskCache()
	notifier := notify.NewLogNotifier(logger)

	tokens := auth.NewStaticTokenProvider("demo-token")
	api, err := taskapi.NewHTTPAdapter(config.PipelineConfig{BaseURL: srv.URL}, tokens, logger)
	if err != nil {
		panic(err)
	}

	onMilestone := func(_ context.Context, w *model.Watch, threshold int) {
		fmt.Printf(">>> milestone %d%% for watch %s\n", threshold, w.ID)
	}
	pollUC := usecase.NewTaskPollUseCase(api, watches, notifLog, cache, notifier, onMilestone, logger)
	resumeUC := usecase.NewResumeUseCase(api, watches, logger)
	watchUC := usecase.NewWatchUseCase(watches, cache, plainCipher{}, noopTx{}, logger)

	w, err := watchUC.Register(ctx, "user-1", "script-1", "v1", "demo-token")
	if err != nil {
		panic(err)
	}

	wp := worker.NewPool(4, logger)
	wp.Start(ctx)
	pw := sched.NewPollWorker(pollUC, watches, wp, 5*time.Second, logger)
	go pw.Run(ctx)

	// resume once the job pauses
	go func() {
		for ctx.Err() == nil {
			time.Sleep(time.Second)
			cur, err := cache.Get(ctx, w.ID)
			if err != nil || cur.Status != model.TaskStatusPaused {
				continue
			}
			fresh, _ := watches.FindByID(ctx, nil, w.ID)
			decision, err := resumeUC.Resume(ctx, fresh)
			if err != nil {
				fmt.Println("resume error:", err)
				return
			}
			fmt.Printf(">>> resume outcome: %s (type=%s carried=%d)\n",
				decision.Outcome, decision.ResumeType, decision.CompletedAnalyses)
			pw.Kick(ctx, w.ID)
			return
		}
	}()

	<-ctx.Done()
	wp.Stop()
	fake.mu.Lock()
	polls := fake.polls
	fake.mu.Unlock()
	fmt.Println("demo finished; polls served:", polls)
}
