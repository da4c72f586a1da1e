package taskapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/config"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.PipelineAPIAdapter = (*HTTPAdapter)(nil)

// HTTPAdapter implements adapter.PipelineAPIAdapter against the pipeline's
// JSON API. Transient failures on the polling path are retried up to
// maxRetries times; a 404 is a legitimate "no task yet" and is never retried.
type HTTPAdapter struct {
	base       string
	client     *http.Client
	tokens     adapter.TokenProvider
	maxRetries int
	backoff    time.Duration
	log        *zerolog.Logger
}

func NewHTTPAdapter(cfg config.PipelineConfig, tokens adapter.TokenProvider, logger *zerolog.Logger) (*HTTPAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("pipeline base url empty")
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAdapter{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		tokens:     tokens,
		maxRetries: retries,
		backoff:    500 * time.Millisecond,
		log:        logger,
	}, nil
}

type findEnvelope struct {
	Task      *model.VideoTask `json:"task"`
	JobStatus string           `json:"jobStatus"`
	Type      string           `json:"type"`
}

func (a *HTTPAdapter) FindTask(ctx context.Context, userID, scriptID, versionID string) (*model.VideoTask, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("scriptId", scriptID)
	q.Set("versionId", versionID)
	q.Set("type", "video")
	endpoint := a.base + "/tasks/find?" + q.Encode()

	token, err := a.tokens.Token(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("token for user %s: %w", userID, err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, a.backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := a.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			// No task yet: valid result, not an error.
			drain(resp)
			return nil, nil
		}
		if resp.StatusCode >= 300 {
			drain(resp)
			lastErr = fmt.Errorf("pipeline api http %d", resp.StatusCode)
			a.log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("find task attempt failed")
			continue
		}

		var env findEnvelope
		err = json.NewDecoder(resp.Body).Decode(&env)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode find response: %w", err)
			continue
		}
		return env.Task, nil
	}
	return nil, lastErr
}

func (a *HTTPAdapter) RetryTask(ctx context.Context, userID, taskID string) (*model.VideoTask, error) {
	body, status, err := a.post(ctx, userID, "/tasks/"+taskID+"/retry")
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, a.classifyError(status, body, model.CreditErrorContext{Route: "retry"})
	}
	var task model.VideoTask
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("decode retry response: %w", err)
	}
	return &task, nil
}

func (a *HTTPAdapter) ResumeTask(ctx context.Context, userID, taskID string) (*adapter.ResumeResult, error) {
	body, status, err := a.post(ctx, userID, "/tasks/"+taskID+"/resume")
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, a.classifyError(status, body, model.CreditErrorContext{Route: "resume"})
	}
	var res adapter.ResumeResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode resume response: %w", err)
	}
	return &res, nil
}

// post runs a bodyless POST. Mutations are user-triggered and never
// auto-retried; only the polling path retries.
func (a *HTTPAdapter) post(ctx context.Context, userID, path string) ([]byte, int, error) {
	token, err := a.tokens.Token(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("token for user %s: %w", userID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// classifyError turns a non-2xx mutation response into the tagged credit
// variant when the body matches a known credit shape, a generic error otherwise.
func (a *HTTPAdapter) classifyError(status int, body []byte, reqCtx model.CreditErrorContext) error {
	if ce, ok := NormalizeCreditError(body, reqCtx); ok {
		return &adapter.InsufficientCreditsError{Credit: *ce}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		return fmt.Errorf("pipeline api http %d", status)
	}
	return fmt.Errorf("pipeline api http %d: %s", status, msg)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	resp.Body.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
