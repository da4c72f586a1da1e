//go:build !integration

package usecase

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/adapter"
	"video-pipeline-monitor/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeAPI lets each test script the pipeline responses.
type fakeAPI struct {
	findFn   func(ctx context.Context, userID, scriptID, versionID string) (*model.VideoTask, error)
	resumeFn func(ctx context.Context, userID, taskID string) (*adapter.ResumeResult, error)
	retryFn  func(ctx context.Context, userID, taskID string) (*model.VideoTask, error)
}

var _ adapter.PipelineAPIAdapter = (*fakeAPI)(nil)

func (f *fakeAPI) FindTask(ctx context.Context, userID, scriptID, versionID string) (*model.VideoTask, error) {
	return f.findFn(ctx, userID, scriptID, versionID)
}

func (f *fakeAPI) ResumeTask(ctx context.Context, userID, taskID string) (*adapter.ResumeResult, error) {
	return f.resumeFn(ctx, userID, taskID)
}

func (f *fakeAPI) RetryTask(ctx context.Context, userID, taskID string) (*model.VideoTask, error) {
	return f.retryFn(ctx, userID, taskID)
}

type stubWatchRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Watch
}

var _ repository.WatchRepository = (*stubWatchRepo)(nil)

func newStubWatchRepo(watches ...*model.Watch) *stubWatchRepo {
	r := &stubWatchRepo{byID: map[string]*model.Watch{}}
	for _, w := range watches {
		cp := *w
		r.byID[w.ID] = &cp
	}
	return r
}

func (r *stubWatchRepo) Save(_ context.Context, _ repository.Tx, w *model.Watch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.byID[w.ID] = &cp
	return nil
}

func (r *stubWatchRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Watch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w := r.byID[id]; w != nil {
		cp := *w
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *stubWatchRepo) FindByTriple(_ context.Context, _ repository.Tx, userID, scriptID, versionID string) (*model.Watch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.byID {
		if w.UserID == userID && w.ScriptID == scriptID && w.VersionID == versionID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubWatchRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.Watch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Watch
	for _, w := range r.byID {
		if w.Active {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubWatchRepo) UpdateTaskID(_ context.Context, _ repository.Tx, watchID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.byID[watchID]
	if w == nil {
		return domain.ErrNotFound
	}
	w.TaskID = taskID
	return nil
}

func (r *stubWatchRepo) TokenEncByUser(_ context.Context, _ repository.Tx, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.byID {
		if w.UserID == userID && w.Active {
			return w.TokenEnc, nil
		}
	}
	return "", domain.ErrNotFound
}

func (r *stubWatchRepo) Deactivate(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.byID[id]
	if w == nil {
		return domain.ErrNotFound
	}
	w.Active = false
	return nil
}

func (r *stubWatchRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubNotifLog struct {
	mu   sync.Mutex
	seen map[string]bool
}

var _ repository.NotificationLogRepository = (*stubNotifLog)(nil)

func newStubNotifLog() *stubNotifLog { return &stubNotifLog{seen: map[string]bool{}} }

func (s *stubNotifLog) Save(_ context.Context, _ repository.Tx, taskID, _, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := taskID + "|" + kind
	if s.seen[key] {
		return domain.ErrAlreadyExists
	}
	s.seen[key] = true
	return nil
}

func (s *stubNotifLog) Exists(_ context.Context, _ repository.Tx, taskID, kind string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[taskID+"|"+kind], nil
}

type stubCache struct {
	mu   sync.Mutex
	byID map[string]*model.VideoTask
}

var _ repository.TaskSnapshotCache = (*stubCache)(nil)

func newStubCache() *stubCache { return &stubCache{byID: map[string]*model.VideoTask{}} }

func (s *stubCache) Store(_ context.Context, watchID string, task *model.VideoTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.byID[watchID] = &cp
	return nil
}

func (s *stubCache) Get(_ context.Context, watchID string) (*model.VideoTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.byID[watchID]; t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCache) Delete(_ context.Context, watchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, watchID)
	return nil
}

// recordingNotifier captures everything delivered through it.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []adapter.Notification
}

var _ adapter.Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) Notify(_ context.Context, msg adapter.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) delivered() []adapter.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]adapter.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

type stubTxManager struct{}

var _ repository.TransactionManager = (*stubTxManager)(nil)

func (stubTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type identityCipher struct{}

func (identityCipher) Encrypt(s string) (string, error) { return "enc:" + s, nil }
func (identityCipher) Decrypt(s string) (string, error) { return s[len("enc:"):], nil }
