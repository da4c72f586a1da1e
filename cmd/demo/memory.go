package main

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/repository"
)

// In-memory stand-ins so the demo runs without Postgres or Redis.

type memWatchRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Watch
}

var _ repository.WatchRepository = (*memWatchRepo)(nil)

func newMemWatchRepo() *memWatchRepo {
	return &memWatchRepo{byID: map[string]*model.Watch{}}
}

func (m *memWatchRepo) Save(_ context.Context, _ repository.Tx, w *model.Watch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.byID[w.ID] = &cp
	return nil
}

func (m *memWatchRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Watch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.byID[id]; w != nil {
		cp := *w
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memWatchRepo) FindByTriple(_ context.Context, _ repository.Tx, userID, scriptID, versionID string) (*model.Watch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.byID {
		if w.UserID == userID && w.ScriptID == scriptID && w.VersionID == versionID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memWatchRepo) ListActive(_ context.Context, _ repository.Tx) ([]*model.Watch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Watch
	for _, w := range m.byID {
		if w.Active {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memWatchRepo) UpdateTaskID(_ context.Context, _ repository.Tx, watchID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.byID[watchID]; w != nil {
		w.TaskID = taskID
		return nil
	}
	return domain.ErrNotFound
}

func (m *memWatchRepo) TokenEncByUser(_ context.Context, _ repository.Tx, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.byID {
		if w.UserID == userID && w.Active {
			return w.TokenEnc, nil
		}
	}
	return "", domain.ErrNotFound
}

func (m *memWatchRepo) Deactivate(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w := m.byID[id]; w != nil {
		w.Active = false
		return nil
	}
	return domain.ErrNotFound
}

func (m *memWatchRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memNotifLog struct {
	mu   sync.Mutex
	seen map[string]bool // taskID|kind
}

var _ repository.NotificationLogRepository = (*memNotifLog)(nil)

func newMemNotifLog() *memNotifLog { return &memNotifLog{seen: map[string]bool{}} }

func (m *memNotifLog) Save(_ context.Context, _ repository.Tx, taskID, _, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := taskID + "|" + kind
	if m.seen[k] {
		return domain.ErrAlreadyExists
	}
	m.seen[k] = true
	return nil
}

func (m *memNotifLog) Exists(_ context.Context, _ repository.Tx, taskID, kind string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[taskID+"|"+kind], nil
}

type memTaskCache struct {
	mu   sync.Mutex
	byID map[string]*model.VideoTask
}

var _ repository.TaskSnapshotCache = (*memTaskCache)(nil)

func newMemTaskCache() *memTaskCache { return &memTaskCache{byID: map[string]*model.VideoTask{}} }

func (m *memTaskCache) Store(_ context.Context, watchID string, task *model.VideoTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	m.byID[watchID] = &cp
	return nil
}

func (m *memTaskCache) Get(_ context.Context, watchID string) (*model.VideoTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.byID[watchID]; t != nil {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memTaskCache) Delete(_ context.Context, watchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, watchID)
	return nil
}

// noopTx runs the callback without a real transaction.
type noopTx struct{}

var _ repository.TransactionManager = (*noopTx)(nil)

func (noopTx) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// plainCipher stores tokens as-is; the demo has no secrets worth protecting.
type plainCipher struct{}

func (plainCipher) Encrypt(s string) (string, error) { return s, nil }
func (plainCipher) Decrypt(s string) (string, error) { return s, nil }
