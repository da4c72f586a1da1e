package model

// ProgressPhase names one of the two fixed halves of the pipeline's progress bar.
type ProgressPhase string

const (
	PhaseGeneration ProgressPhase = "generation" // [0,50)
	PhaseAnalysis   ProgressPhase = "analysis"   // [50,100]
)

// ProgressView is a display-oriented breakdown of the single 0-100 progress
// integer. The 50% boundary is a fixed client-side convention, not something
// the server reports.
type ProgressView struct {
	Overall      int           `json:"overall"`
	Phase        ProgressPhase `json:"phase"`
	PhasePercent int           `json:"phasePercent"`
}

// DeriveProgress maps overall progress onto the two-phase view.
// Inputs outside 0..100 are clamped.
func DeriveProgress(progress int) ProgressView {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if progress < 50 {
		return ProgressView{Overall: progress, Phase: PhaseGeneration, PhasePercent: progress * 2}
	}
	return ProgressView{Overall: progress, Phase: PhaseAnalysis, PhasePercent: (progress - 50) * 2}
}

// MilestoneThresholds are the overall-progress marks that trigger a one-shot
// refresh callback the first time each is crossed during a task's lifetime.
var MilestoneThresholds = [4]int{25, 50, 75, 100}
