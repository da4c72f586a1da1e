//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"video-pipeline-monitor/internal/domain"
)

func TestNotificationLogRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewNotificationLogRepo(testPool)

	t.Run("should save and check for notification existence", func(t *testing.T) {
		cleanup(t)

		exists, err := repo.Exists(ctx, nil, "task-1", "completed")
		if err != nil {
			t.Fatalf("Exists check failed unexpectedly: %v", err)
		}
		if exists {
			t.Fatal("expected notification to not exist, but it was found")
		}

		if err := repo.Save(ctx, nil, "task-1", "user-1", "completed"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		exists, err = repo.Exists(ctx, nil, "task-1", "completed")
		if err != nil {
			t.Fatalf("Exists check failed unexpectedly: %v", err)
		}
		if !exists {
			t.Fatal("expected notification to exist after save")
		}
	})

	t.Run("should reject a duplicate (task, kind) pair", func(t *testing.T) {
		cleanup(t)

		if err := repo.Save(ctx, nil, "task-1", "user-1", "failed"); err != nil {
			t.Fatalf("first Save failed: %v", err)
		}
		err := repo.Save(ctx, nil, "task-1", "user-2", "failed")
		if !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}

		// a different kind for the same task is a separate notification
		if err := repo.Save(ctx, nil, "task-1", "user-1", "paused"); err != nil {
			t.Fatalf("Save with different kind failed: %v", err)
		}
	})
}
