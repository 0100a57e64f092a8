package play

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/domain/clock"
	"github.com/oshokin/chessclock/internal/logger"
	"github.com/oshokin/chessclock/internal/repository/snapshot"
	"github.com/oshokin/chessclock/internal/session"
)

func newSnapshotRepository(path string) snapshot.Repository {
	return snapshot.NewFileRepository(path)
}

// newController starts a fresh session, or the saved one when resume is set.
// A resumed game keeps its own time control; different current settings are
// staged for the next reset.
func newController(
	ctx context.Context,
	settings *config.Config,
	repo snapshot.Repository,
	resume bool,
) (*session.Controller, error) {
	if !resume {
		return newFreshController(settings)
	}

	saved, err := repo.Load(ctx)
	if errors.Is(err, snapshot.ErrNotFound) {
		logger.Info(ctx, "No saved session, starting a new one")

		return newFreshController(settings)
	}

	if err != nil {
		return nil, fmt.Errorf("load saved session: %w", err)
	}

	ctrl, err := session.RestoreController(saved.Config, saved.State)
	if err != nil {
		return nil, fmt.Errorf("restore saved session: %w", err)
	}

	if _, err := ctrl.Handle(session.SettingsChanged{Config: settings.Clock()}); err != nil {
		return nil, fmt.Errorf("apply settings: %w", err)
	}

	restored := ctrl.State()
	logger.InfoKV(ctx, "Resuming saved session",
		"session_id", restored.SessionID,
		"saved_at", saved.SavedAt,
		"phase", restored.Phase,
		"remaining1", clock.FormatRemaining(restored.Remaining1),
		"remaining2", clock.FormatRemaining(restored.Remaining2),
	)

	return ctrl, nil
}

func newFreshController(settings *config.Config) (*session.Controller, error) {
	ctrl, err := session.NewController(settings.Clock())
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	return ctrl, nil
}

// finishSession saves a game in progress and forgets any other.
func finishSession(ctx context.Context, repo snapshot.Repository, ctrl *session.Controller) error {
	state := ctrl.State()

	if state.Phase != clock.Running && state.Phase != clock.Paused {
		return repo.Delete(ctx)
	}

	err := repo.Save(ctx, &snapshot.Snapshot{
		Config:  ctrl.Config(),
		State:   state,
		SavedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Session saved, continue it with --resume",
		"session_id", state.SessionID,
		"moves", state.Moves,
	)

	return nil
}
