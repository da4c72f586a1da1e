package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/config"
	"video-pipeline-monitor/internal/usecase"
)

// Kicker restarts polling for a watch; satisfied by sched.PollWorker.
type Kicker interface {
	Kick(ctx context.Context, watchID string)
}

// Server is the monitor's admin API: watch management plus retry/resume
// triggers. It is not the SaaS's public surface.
type Server struct {
	watchUC  usecase.WatchUseCase
	resumeUC usecase.ResumeUseCase
	kicker   Kicker
	auth     *AuthManager
	apiKey   string
	srv      *http.Server
	log      *zerolog.Logger
}

func NewServer(
	cfg config.AdminConfig,
	watchUC usecase.WatchUseCase,
	resumeUC usecase.ResumeUseCase,
	kicker Kicker,
	secureCookies bool,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		watchUC:  watchUC,
		resumeUC: resumeUC,
		kicker:   kicker,
		auth:     NewAuthManager(cfg.JWTSecret, secureCookies, cfg.SessionTTL),
		apiKey:   cfg.APIKey,
		log:      logger,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/session", s.sessionHandler())

	r.Route("/api/v1/watches", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.listWatchesHandler())
		r.Post("/", s.createWatchHandler())
		r.Get("/{watchID}", s.getWatchHandler())
		r.Delete("/{watchID}", s.deleteWatchHandler())
		r.Post("/{watchID}/resume", s.resumeHandler())
		r.Post("/{watchID}/retry", s.retryHandler())
	})
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("admin API listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// authMiddleware accepts either a valid session JWT or the raw API key.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("X-API-Key") == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}
