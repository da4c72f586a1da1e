// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-pipeline-monitor/internal/config"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/adapter"
	authadapter "video-pipeline-monitor/internal/infra/adapters/auth"
	"video-pipeline-monitor/internal/infra/adapters/notify"
	"video-pipeline-monitor/internal/infra/adapters/taskapi"
	pg "video-pipeline-monitor/internal/infra/db/postgres"
	"video-pipeline-monitor/internal/infra/logging"
	"video-pipeline-monitor/internal/infra/metrics"
	red "video-pipeline-monitor/internal/infra/redis"
	"video-pipeline-monitor/internal/infra/sched"
	"video-pipeline-monitor/internal/infra/security"
	"video-pipeline-monitor/internal/infra/web"
	"video-pipeline-monitor/internal/infra/worker"
	"video-pipeline-monitor/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)
	watchRepo := pg.NewWatchRepo(pool)
	notifLog := pg.NewNotificationLogRepo(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	taskCache := red.NewTaskCache(redisClient, cfg.Redis.TTL)

	// ---- Security / auth ----
	enc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}
	tokens := authadapter.NewWatchTokenProvider(watchRepo, enc)

	// ---- Pipeline API ----
	api, err := taskapi.NewHTTPAdapter(cfg.Pipeline, tokens, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline adapter")
	}

	// ---- Notifier ----
	var notifier adapter.Notifier
	switch cfg.Notify.Channel {
	case "telegram":
		notifier, err = notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChat, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
	default:
		notifier = notify.NewLogNotifier(logger)
	}

	// ---- Use cases ----
	onMilestone := func(ctx context.Context, w *model.Watch, threshold int) {
		logger.Debug().Str("watch_id", w.ID).Str("task_id", w.TaskID).Int("threshold", threshold).Msg("progress milestone")
	}
	pollUC := usecase.NewTaskPollUseCase(api, watchRepo, notifLog, taskCache, notifier, onMilestone, logger)
	resumeUC := usecase.NewResumeUseCase(api, watchRepo, logger)
	watchUC := usecase.NewWatchUseCase(watchRepo, taskCache, enc, tm, logger)

	// ---- Workers ----
	wp := worker.NewPool(cfg.Monitor.Workers, logger)
	wp.Start(ctx)
	pollWorker := sched.NewPollWorker(pollUC, watchRepo, wp, cfg.Monitor.RefreshInterval, logger)
	go func() {
		if err := pollWorker.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("poll worker exited")
		}
	}()

	// ---- Admin API ----
	server := web.NewServer(cfg.Admin, watchUC, resumeUC, pollWorker, !cfg.Runtime.Dev, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server exited")
		}
	}()

	logger.Info().Msg("video pipeline monitor started")

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	cancel()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := server.Shutdown(shutCtx); err != nil {
		logger.Warn().Err(err).Msg("admin server shutdown")
	}
	wp.Stop()
	logger.Info().Msg("bye")
}
