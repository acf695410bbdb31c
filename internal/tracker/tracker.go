package tracker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mwenda/somo/internal/domain"
)

// Tracker is the single source of truth for unit download status. It is the
// only writer of DownloadState and serializes transitions per unit, so the
// idle/failed -> pending guard is an atomic check-and-set: two rapid download
// taps can never produce two in-flight attempts for the same unit.
type Tracker struct {
	store  domain.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-unit transition locks

	now func() time.Time // injectable clock for tests
}

// New creates a tracker backed by the given store.
func New(store domain.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
		now:    time.Now,
	}
}

// unitLock returns the transition lock for a unit, creating it on first use.
func (t *Tracker) unitLock(unitID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[unitID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[unitID] = lock
	}
	return lock
}

// State returns the unit's current download state (idle if never seen).
func (t *Tracker) State(unitID string) domain.DownloadState {
	state, ok := t.store.GetState(unitID)
	if !ok {
		return domain.NewDownloadState()
	}
	return state
}

// Begin performs the guarded idle/failed -> pending transition. The boolean
// reports whether this caller won the download attempt; a false return with a
// nil error means an attempt is already pending, in progress, or completed,
// and the returned state is the current one (idempotent under concurrent taps).
func (t *Tracker) Begin(unitID string) (domain.DownloadState, bool, error) {
	lock := t.unitLock(unitID)
	lock.Lock()
	defer lock.Unlock()

	state := t.State(unitID)
	switch state.Status {
	case domain.StatusIdle, domain.StatusFailed:
		state.Status = domain.StatusPending
		state.StartedAt = 0
		state.CompletedAt = 0
		state.AssetIDs = nil
		state.StorageBytes = 0
		state.LastError = ""
		if err := t.store.SaveState(unitID, state); err != nil {
			return state, false, err
		}
		t.logger.Debug("download pending", "unitID", unitID)
		return state, true, nil
	default:
		return state, false, nil
	}
}

// Start moves pending -> in_progress and records the start timestamp.
func (t *Tracker) Start(unitID string) (domain.DownloadState, error) {
	return t.transition(unitID, domain.StatusInProgress, func(state *domain.DownloadState) {
		state.StartedAt = t.now().Unix()
	})
}

// RecordAssets attaches the manifest's asset IDs to an in-progress download.
func (t *Tracker) RecordAssets(unitID string, assetIDs []string) (domain.DownloadState, error) {
	lock := t.unitLock(unitID)
	lock.Lock()
	defer lock.Unlock()

	state := t.State(unitID)
	if state.Status != domain.StatusInProgress {
		return state, fmt.Errorf("%w: record assets in %s", domain.ErrIllegalTransition, state.Status)
	}
	state.AssetIDs = assetIDs
	if err := t.store.SaveState(unitID, state); err != nil {
		return state, err
	}
	return state, nil
}

// Complete moves in_progress -> completed. Callers invoke it only after every
// asset has been verified present and sized; storageBytes is the sum.
func (t *Tracker) Complete(unitID string, assetIDs []string, storageBytes int64) (domain.DownloadState, error) {
	return t.transition(unitID, domain.StatusCompleted, func(state *domain.DownloadState) {
		state.CompletedAt = t.now().Unix()
		state.AssetIDs = assetIDs
		state.StorageBytes = storageBytes
		state.LastError = ""
	})
}

// Fail moves in_progress -> failed. Partial asset records are purged by the
// orchestrator as part of the same operation, so a failed unit owns nothing.
func (t *Tracker) Fail(unitID string, cause error) (domain.DownloadState, error) {
	return t.transition(unitID, domain.StatusFailed, func(state *domain.DownloadState) {
		state.AssetIDs = nil
		state.StorageBytes = 0
		if cause != nil {
			state.LastError = cause.Error()
		}
	})
}

// Reset moves any state -> idle. Used by explicit deletion, which doubles as
// cancellation for an in-flight download.
func (t *Tracker) Reset(unitID string) (domain.DownloadState, error) {
	lock := t.unitLock(unitID)
	lock.Lock()
	defer lock.Unlock()

	state := t.State(unitID)
	prev := state.Status
	state = domain.NewDownloadState()
	if err := t.store.SaveState(unitID, state); err != nil {
		return state, err
	}
	t.logger.Debug("download state reset", "unitID", unitID, "from", prev)
	return state, nil
}

// transition performs a locked status change, rejecting illegal steps.
func (t *Tracker) transition(unitID string, next domain.DownloadStatus, apply func(*domain.DownloadState)) (domain.DownloadState, error) {
	lock := t.unitLock(unitID)
	lock.Lock()
	defer lock.Unlock()

	state := t.State(unitID)
	if !state.Status.CanTransition(next) {
		return state, fmt.Errorf("%w: %s -> %s (unit %s)", domain.ErrIllegalTransition, state.Status, next, unitID)
	}

	state.Status = next
	if apply != nil {
		apply(&state)
	}
	if err := t.store.SaveState(unitID, state); err != nil {
		return state, err
	}
	t.logger.Debug("download status changed", "unitID", unitID, "status", next)
	return state, nil
}
