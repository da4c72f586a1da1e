package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
)

type sessionRequest struct {
	APIKey string `json:"api_key"`
}

// Handler exchanging the configured API key for a session JWT.
func (s *Server) sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if s.apiKey == "" || req.APIKey != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

type watchCreateRequest struct {
	UserID      string `json:"user_id"`
	ScriptID    string `json:"script_id"`
	VersionID   string `json:"version_id"`
	BearerToken string `json:"bearer_token"`
}

type watchResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ScriptID  string `json:"script_id"`
	VersionID string `json:"version_id"`
	TaskID    string `json:"task_id,omitempty"`
	Active    bool   `json:"active"`
}

func toWatchResponse(w *model.Watch) watchResponse {
	return watchResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		ScriptID:  w.ScriptID,
		VersionID: w.VersionID,
		TaskID:    w.TaskID,
		Active:    w.Active,
	}
}

func (s *Server) listWatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		watches, err := s.watchUC.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list watches", http.StatusInternalServerError)
			return
		}
		out := make([]watchResponse, 0, len(watches))
		for _, it := range watches {
			out = append(out, toWatchResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) createWatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req watchCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		watch, err := s.watchUC.Register(r.Context(), req.UserID, req.ScriptID, req.VersionID, req.BearerToken)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to register watch", http.StatusInternalServerError)
			return
		}
		if s.kicker != nil {
			s.kicker.Kick(r.Context(), watch.ID)
		}
		writeJSON(w, http.StatusCreated, toWatchResponse(watch))
	}
}

// watchDetail joins the watch with its cached snapshot and the derived
// two-phase progress view.
type watchDetail struct {
	Watch    watchResponse       `json:"watch"`
	Task     *model.VideoTask    `json:"task,omitempty"`
	Progress *model.ProgressView `json:"progress,omitempty"`
}

func (s *Server) getWatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "watchID")
		watch, err := s.watchUC.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Watch not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to load watch", http.StatusInternalServerError)
			return
		}

		detail := watchDetail{Watch: toWatchResponse(watch)}
		if task, err := s.watchUC.Snapshot(r.Context(), id); err == nil && task != nil {
			pv := model.DeriveProgress(task.Progress)
			detail.Task = task
			detail.Progress = &pv
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) deleteWatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "watchID")
		if err := s.watchUC.Remove(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Watch not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to remove watch", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) resumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "watchID")
		watch, err := s.watchUC.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Watch not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to load watch", http.StatusInternalServerError)
			return
		}

		decision, err := s.resumeUC.Resume(r.Context(), watch)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNoTaskForWatch):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domain.ErrResumeInFlight):
				http.Error(w, err.Error(), http.StatusTooManyRequests)
			default:
				http.Error(w, "Resume failed", http.StatusBadGateway)
			}
			return
		}

		// Only a successful resume re-enables polling; credit-blocked and
		// needs-configuration leave the job paused.
		if decision.CanResume() && s.kicker != nil {
			s.kicker.Kick(r.Context(), watch.ID)
		}
		writeJSON(w, http.StatusOK, decision)
	}
}

func (s *Server) retryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "watchID")
		watch, err := s.watchUC.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Watch not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to load watch", http.StatusInternalServerError)
			return
		}

		task, err := s.resumeUC.Retry(r.Context(), watch)
		if err != nil {
			if errors.Is(err, domain.ErrNoTaskForWatch) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			if errors.Is(err, domain.ErrInsufficientCredits) {
				http.Error(w, err.Error(), http.StatusPaymentRequired)
				return
			}
			http.Error(w, "Retry failed", http.StatusBadGateway)
			return
		}
		if s.kicker != nil {
			s.kicker.Kick(r.Context(), watch.ID)
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
