// File: internal/usecase/watch_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain"
	"video-pipeline-monitor/internal/domain/model"
	"video-pipeline-monitor/internal/domain/ports/repository"
)

// TokenCipher encrypts pipeline bearer tokens before they hit storage.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type WatchUseCase interface {
	// Register starts observing the job for a (user, script, version) triple.
	// Registering an existing triple returns the existing watch.
	Register(ctx context.Context, userID, scriptID, versionID, bearerToken string) (*model.Watch, error)
	Get(ctx context.Context, id string) (*model.Watch, error)
	List(ctx context.Context) ([]*model.Watch, error)
	// Remove deactivates a watch and drops its cached snapshot.
	Remove(ctx context.Context, id string) error
	// Snapshot returns the last cached task for a watch, nil when none.
	Snapshot(ctx context.Context, watchID string) (*model.VideoTask, error)
}

// Compile-time check
var _ WatchUseCase = (*watchUC)(nil)

type watchUC struct {
	watches repository.WatchRepository
	cache   repository.TaskSnapshotCache
	cipher  TokenCipher
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewWatchUseCase(
	watches repository.WatchRepository,
	cache repository.TaskSnapshotCache,
	cipher TokenCipher,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *watchUC {
	return &watchUC{watches: watches, cache: cache, cipher: cipher, tm: tm, log: logger}
}

func (u *watchUC) Register(ctx context.Context, userID, scriptID, versionID, bearerToken string) (*model.Watch, error) {
	if userID == "" || scriptID == "" || versionID == "" || bearerToken == "" {
		return nil, domain.ErrInvalidArgument
	}

	tokenEnc, err := u.cipher.Encrypt(bearerToken)
	if err != nil {
		return nil, fmt.Errorf("encrypt token: %w", err)
	}

	// Lookup and insert share one transaction so concurrent registrations of
	// the same triple cannot slip past each other.
	var w *model.Watch
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if existing, err := u.watches.FindByTriple(ctx, tx, userID, scriptID, versionID); err == nil && existing != nil {
			w = existing
			return nil
		}
		w = model.NewWatch(uuid.NewString(), userID, scriptID, versionID, tokenEnc)
		return u.watches.Save(ctx, tx, w)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("watch_id", w.ID).Str("user_id", userID).Str("script_id", scriptID).Msg("watch registered")
	return w, nil
}

func (u *watchUC) Get(ctx context.Context, id string) (*model.Watch, error) {
	return u.watches.FindByID(ctx, repository.NoTX, id)
}

func (u *watchUC) List(ctx context.Context) ([]*model.Watch, error) {
	return u.watches.ListActive(ctx, repository.NoTX)
}

func (u *watchUC) Remove(ctx context.Context, id string) error {
	if err := u.watches.Deactivate(ctx, repository.NoTX, id); err != nil {
		return err
	}
	if err := u.cache.Delete(ctx, id); err != nil {
		u.log.Warn().Err(err).Str("watch_id", id).Msg("snapshot cache delete failed")
	}
	return nil
}

func (u *watchUC) Snapshot(ctx context.Context, watchID string) (*model.VideoTask, error) {
	task, err := u.cache.Get(ctx, watchID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}
