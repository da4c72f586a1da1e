package model

import "testing"

func TestDeriveProgress_PhaseSplit(t *testing.T) {
	cases := []struct {
		in      int
		phase   ProgressPhase
		percent int
	}{
		{0, PhaseGeneration, 0},
		{10, PhaseGeneration, 20},
		{49, PhaseGeneration, 98},
		{50, PhaseAnalysis, 0},
		{75, PhaseAnalysis, 50},
		{100, PhaseAnalysis, 100},
	}
	for _, c := range cases {
		got := DeriveProgress(c.in)
		if got.Phase != c.phase || got.PhasePercent != c.percent {
			t.Fatalf("DeriveProgress(%d) = %s/%d%%, want %s/%d%%",
				c.in, got.Phase, got.PhasePercent, c.phase, c.percent)
		}
		if got.Overall != c.in {
			t.Fatalf("DeriveProgress(%d) overall = %d", c.in, got.Overall)
		}
	}
}

func TestDeriveProgress_Clamps(t *testing.T) {
	if got := DeriveProgress(-5); got.Overall != 0 || got.Phase != PhaseGeneration {
		t.Fatalf("negative progress not clamped: %+v", got)
	}
	if got := DeriveProgress(140); got.Overall != 100 || got.PhasePercent != 100 {
		t.Fatalf("overflow progress not clamped: %+v", got)
	}
}

func TestTaskStatus_LiveAndSettled(t *testing.T) {
	live := []TaskStatus{TaskStatusPending, TaskStatusActive}
	settled := []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusPaused}

	for _, s := range live {
		if !s.Live() || s.Settled() {
			t.Fatalf("status %q should be live and not settled", s)
		}
	}
	for _, s := range settled {
		if s.Live() || !s.Settled() {
			t.Fatalf("status %q should be settled and not live", s)
		}
	}
	if TaskStatus("bogus").Valid() {
		t.Fatal("bogus status should not be valid")
	}
}

func TestAnalysisStageTitles(t *testing.T) {
	got := AnalysisStageTitles([]string{"imageGen", "audioGen"})
	want := []string{"Image Generation", "Audio Generation"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("titles = %v, want %v", got, want)
	}

	// unknown keys pass through
	if AnalysisStageTitle("futureStage") != "futureStage" {
		t.Fatal("unknown stage key should fall back to itself")
	}
}
