package model

type ResumeType string

const (
	ResumeTypeCheckpoint ResumeType = "checkpoint"
	ResumeTypeFull       ResumeType = "full"
)

// ResumeOutcome classifies one resume round-trip.
type ResumeOutcome string

const (
	// ResumeOutcomeResumed means the server accepted the resume; polling
	// should restart immediately.
	ResumeOutcomeResumed ResumeOutcome = "resumed"
	// ResumeOutcomeNeedsConfiguration means the server refused because paused
	// stages require user configuration first.
	ResumeOutcomeNeedsConfiguration ResumeOutcome = "needs_configuration"
	// ResumeOutcomeCreditBlocked means the server rejected the resume with an
	// insufficient-balance error.
	ResumeOutcomeCreditBlocked ResumeOutcome = "credit_blocked"
)

// ResumeDecision is the transient result of one resume attempt. It exists for
// the duration of a single round-trip and is never persisted.
type ResumeDecision struct {
	Outcome ResumeOutcome `json:"outcome"`

	// Set when Outcome == Resumed.
	ResumeType        ResumeType `json:"resumeType,omitempty"`
	CompletedAnalyses int        `json:"completedAnalyses,omitempty"` // stages carried over from the checkpoint

	// Set when Outcome == NeedsConfiguration.
	PausedAnalyses []string `json:"pausedAnalyses,omitempty"` // raw stage keys
	PausedTitles   []string `json:"pausedTitles,omitempty"`   // resolved display titles, same order
	Suggestion     string   `json:"suggestion,omitempty"`

	// Set when Outcome == CreditBlocked.
	CreditError *CreditError `json:"creditError,omitempty"`
}

// CanResume reports whether polling may restart after this decision.
func (d *ResumeDecision) CanResume() bool {
	return d.Outcome == ResumeOutcomeResumed
}
