package adapter

import (
	"context"
	"fmt"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
)

// ResumeResult is the raw outcome of POST /tasks/{id}/resume as the server
// reports it. Classification into a ResumeDecision happens in the use case.
type ResumeResult struct {
	Success                 bool     `json:"success"`
	CanResume               bool     `json:"canResume"`
	ResumeType              string   `json:"resumeType"`        // "checkpoint" | "full"
	CompletedAnalyses       int      `json:"completedAnalyses"` // carried over when resuming from a checkpoint
	AvailablePausedAnalyses []string `json:"availablePausedAnalyses"`
	Suggestion              string   `json:"suggestion"`
}

// PipelineAPIAdapter is the port to the external video-pipeline HTTP API.
// The server owns all task state; this port only reads it and triggers
// server-side transitions.
type PipelineAPIAdapter interface {
	// FindTask locates the task for a (user, script, version) triple.
	// A server-side 404 is a legitimate "no task yet" and returns (nil, nil).
	FindTask(ctx context.Context, userID, scriptID, versionID string) (*model.VideoTask, error)

	// RetryTask restarts a failed task and returns the fresh task snapshot.
	RetryTask(ctx context.Context, userID, taskID string) (*model.VideoTask, error)

	// ResumeTask attempts to continue a paused task. Credit rejections come
	// back as *InsufficientCreditsError.
	ResumeTask(ctx context.Context, userID, taskID string) (*ResumeResult, error)
}

// InsufficientCreditsError is the tagged variant for credit-insufficiency
// rejections, constructed once at the HTTP boundary from whichever raw shape
// the failing endpoint produced.
type InsufficientCreditsError struct {
	Credit model.CreditError
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required=%d available=%d",
		e.Credit.Details.Required, e.Credit.Details.Available)
}

// Unwrap lets callers match with errors.Is(err, domain.ErrInsufficientCredits).
func (e *InsufficientCreditsError) Unwrap() error { return domain.ErrInsufficientCredits }
