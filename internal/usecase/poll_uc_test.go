//go:build !integration

package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/adapter"
)

func testWatch(taskID string) *model.Watch {
	w := model.NewWatch("watch-1", "user-1", "script-1", "v1", "enc:tok")
	w.TaskID = taskID
	return w
}

func taskWith(id string, status model.TaskStatus, progress int) *model.VideoTask {
	return &model.VideoTask{ID: id, Status: status, Progress: progress, UpdatedAt: time.Now()}
}

func newPollUC(api *fakeAPI, watches *stubWatchRepo, notifier *recordingNotifier, onMilestone MilestoneFunc) *pollUC {
	return NewTaskPollUseCase(api, watches, newStubNotifLog(), newStubCache(), notifier, onMilestone, testLogger())
}

func TestNextInterval_CadenceTable(t *testing.T) {
	uc := newPollUC(&fakeAPI{}, newStubWatchRepo(), &recordingNotifier{}, nil)

	cases := []struct {
		name    string
		task    *model.VideoTask
		knownID string
		want    time.Duration
	}{
		{"pending", taskWith("t1", model.TaskStatusPending, 0), "t1", 2 * time.Second},
		{"active", taskWith("t1", model.TaskStatusActive, 30), "t1", 2 * time.Second},
		{"completed", taskWith("t1", model.TaskStatusCompleted, 100), "t1", 10 * time.Second},
		{"failed", taskWith("t1", model.TaskStatusFailed, 40), "t1", 10 * time.Second},
		{"paused", taskWith("t1", model.TaskStatusPaused, 55), "t1", 10 * time.Second},
		{"nil task with known id", nil, "t1", 3 * time.Second},
		{"nil task, nothing known", nil, "", 0},
	}
	for _, c := range cases {
		if got := uc.NextInterval(c.task, c.knownID); got != c.want {
			t.Errorf("%s: NextInterval = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPollOnce_NoTaskIsNotAnError(t *testing.T) {
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return nil, nil
	}}
	notifier := &recordingNotifier{}
	uc := newPollUC(api, newStubWatchRepo(), notifier, nil)

	res, err := uc.PollOnce(context.Background(), testWatch("t1"))
	if err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if res.Task != nil {
		t.Fatalf("expected nil task, got %+v", res.Task)
	}
	if res.NextPoll != PollIntervalBridge {
		t.Fatalf("NextPoll = %v, want bridge interval %v", res.NextPoll, PollIntervalBridge)
	}
	if len(notifier.delivered()) != 0 {
		t.Fatal("no notification expected for a missing task")
	}
}

func TestPollOnce_UpstreamErrorPropagates(t *testing.T) {
	boom := errors.New("pipeline down")
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return nil, boom
	}}
	uc := newPollUC(api, newStubWatchRepo(), &recordingNotifier{}, nil)

	if _, err := uc.PollOnce(context.Background(), testWatch("t1")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestPollOnce_TerminalNotifiesExactlyOnce(t *testing.T) {
	done := taskWith("t1", model.TaskStatusCompleted, 100)
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return done, nil
	}}
	notifier := &recordingNotifier{}
	uc := newPollUC(api, newStubWatchRepo(testWatch("t1")), notifier, nil)

	w := testWatch("t1")
	for i := 0; i < 5; i++ {
		res, err := uc.PollOnce(context.Background(), w)
		if err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
		if res.NextPoll != PollIntervalSettled {
			t.Fatalf("poll %d: NextPoll = %v, want settled interval", i, res.NextPoll)
		}
	}

	sent := notifier.delivered()
	if len(sent) != 1 {
		t.Fatalf("terminal notification fired %d times, want exactly 1", len(sent))
	}
	if sent[0].Kind != adapter.NotifyCompleted || sent[0].TaskID != "t1" {
		t.Fatalf("unexpected notification: %+v", sent[0])
	}
}

func TestPollOnce_PausedNotificationNamesStages(t *testing.T) {
	paused := taskWith("t1", model.TaskStatusPaused, 55)
	paused.PausedAnalyses = []string{"imageGen", "audioGen"}
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return paused, nil
	}}
	notifier := &recordingNotifier{}
	uc := newPollUC(api, newStubWatchRepo(testWatch("t1")), notifier, nil)

	if _, err := uc.PollOnce(context.Background(), testWatch("t1")); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	sent := notifier.delivered()
	if len(sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(sent))
	}
	body := sent[0].Body
	for _, want := range []string{"Image Generation", "Audio Generation"} {
		if !strings.Contains(body, want) {
			t.Fatalf("paused body %q missing stage title %q", body, want)
		}
	}
}

func TestPollOnce_MilestonesFireOncePerThreshold(t *testing.T) {
	progress := 0
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return taskWith("t1", model.TaskStatusActive, progress), nil
	}}
	var mu sync.Mutex
	var fired []int
	onMilestone := func(_ context.Context, _ *model.Watch, threshold int) {
		mu.Lock()
		fired = append(fired, threshold)
		mu.Unlock()
	}
	uc := newPollUC(api, newStubWatchRepo(testWatch("t1")), &recordingNotifier{}, onMilestone)

	w := testWatch("t1")
	// progress walks up; repeated observations at the same value must not refire
	for _, p := range []int{10, 30, 30, 55, 55, 80, 100, 100} {
		progress = p
		if _, err := uc.PollOnce(context.Background(), w); err != nil {
			t.Fatalf("poll at %d: %v", p, err)
		}
	}

	want := []int{25, 50, 75, 100}
	if len(fired) != len(want) {
		t.Fatalf("milestones fired = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("milestones fired = %v, want %v", fired, want)
		}
	}
}

func TestPollOnce_MilestonesResetOnNewTaskID(t *testing.T) {
	taskID := "t1"
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return taskWith(taskID, model.TaskStatusActive, 60), nil
	}}
	var mu sync.Mutex
	count := map[int]int{}
	onMilestone := func(_ context.Context, _ *model.Watch, threshold int) {
		mu.Lock()
		count[threshold]++
		mu.Unlock()
	}
	watches := newStubWatchRepo(testWatch("t1"))
	uc := newPollUC(api, watches, &recordingNotifier{}, onMilestone)

	w := testWatch("t1")
	if _, err := uc.PollOnce(context.Background(), w); err != nil {
		t.Fatal(err)
	}

	// a retry produced a fresh task id; the thresholds must fire again
	taskID = "t2"
	if _, err := uc.PollOnce(context.Background(), w); err != nil {
		t.Fatal(err)
	}

	if count[25] != 2 || count[50] != 2 {
		t.Fatalf("milestone counts after task change = %v, want 25 and 50 fired twice", count)
	}
	if w.TaskID != "t2" {
		t.Fatalf("watch task id = %q, want t2", w.TaskID)
	}
	if stored, err := watches.FindByID(context.Background(), nil, w.ID); err != nil || stored.TaskID != "t2" {
		t.Fatalf("persisted task id = %q (err %v), want t2", stored.TaskID, err)
	}
}

func TestPollOnce_SnapshotCached(t *testing.T) {
	api := &fakeAPI{findFn: func(context.Context, string, string, string) (*model.VideoTask, error) {
		return taskWith("t1", model.TaskStatusActive, 42), nil
	}}
	cache := newStubCache()
	uc := NewTaskPollUseCase(api, newStubWatchRepo(testWatch("t1")), newStubNotifLog(), cache, &recordingNotifier{}, nil, testLogger())

	w := testWatch("t1")
	if _, err := uc.PollOnce(context.Background(), w); err != nil {
		t.Fatal(err)
	}
	got, err := cache.Get(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("snapshot not cached: %v", err)
	}
	if got.Progress != 42 {
		t.Fatalf("cached progress = %d, want 42", got.Progress)
	}
}
