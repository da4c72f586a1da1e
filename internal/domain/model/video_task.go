package model

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusPaused    TaskStatus = "paused"
)

// Live reports whether the job is still being worked on server-side.
func (s TaskStatus) Live() bool {
	return s == TaskStatusPending || s == TaskStatusActive
}

// Settled reports whether the job reached a state worth notifying about.
// Paused counts: the user has to act before anything moves again.
func (s TaskStatus) Settled() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusPaused
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusActive, TaskStatusCompleted, TaskStatusFailed, TaskStatusPaused:
		return true
	}
	return false
}

// QueueInfo is the server's own description of the job's queue position.
// EstimatedWait is an opaque, server-formatted string and is passed through as-is.
type QueueInfo struct {
	Position      int    `json:"position"`
	Total         int    `json:"total"`
	EstimatedWait string `json:"estimatedWait"`
}

// VideoTask is a read-only, eventually-consistent copy of a server-tracked
// video-generation job. The server owns the entity; this process only observes
// it via polling and never writes it back.
type VideoTask struct {
	ID             string     `json:"id"`
	Status         TaskStatus `json:"status"`
	Progress       int        `json:"progress"` // 0..100, monotone while Live
	QueueInfo      *QueueInfo `json:"queueInfo,omitempty"`
	PausedAnalyses []string   `json:"pausedAnalyses,omitempty"` // only meaningful when paused
	LastError      string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// analysisStageTitles maps pipeline stage keys to the titles shown to users.
// Unknown keys fall back to the raw key so new server-side stages degrade
// gracefully instead of breaking resume dialogs.
var analysisStageTitles = map[string]string{
	"imageGen":      "Image Generation",
	"audioGen":      "Audio Generation",
	"videoGen":      "Video Rendering",
	"lipSync":       "Lip Sync",
	"captionGen":    "Caption Generation",
	"sceneAnalysis": "Scene Analysis",
	"contentReview": "Content Review",
}

// AnalysisStageTitle resolves a pipeline stage key to its display title.
func AnalysisStageTitle(key string) string {
	if t, ok := analysisStageTitles[key]; ok {
		return t
	}
	return key
}

// AnalysisStageTitles resolves a list of stage keys, preserving order.
func AnalysisStageTitles(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, AnalysisStageTitle(k))
	}
	return out
}
