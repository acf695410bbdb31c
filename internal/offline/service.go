package offline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mwenda/somo/internal/domain"
	"github.com/mwenda/somo/internal/tracker"
	"golang.org/x/sync/errgroup"
)

const defaultAssetConcurrency = 3

// Service is the sync orchestrator. It coordinates the metadata-only read
// path, the full-content read path, and the download write path across the
// content client, cache store, asset store, and status tracker.
//
// All collaborators are constructor-injected so tests can run many
// independent instances against in-memory stores.
type Service struct {
	client  domain.ContentClient
	store   domain.Store
	assets  domain.AssetStore
	tracker *tracker.Tracker
	logger  *slog.Logger

	assetConcurrency int

	// Per-unit cancel handles for in-flight downloads. Deletion cancels
	// through here; no separate cancellation API exists.
	mu       sync.Mutex
	inflight map[string]*inflightHandle
}

// inflightHandle identifies one download attempt so a finished attempt never
// unregisters its successor.
type inflightHandle struct {
	cancel context.CancelFunc
}

// NewService creates the orchestrator.
func NewService(client domain.ContentClient, store domain.Store, assets domain.AssetStore, trk *tracker.Tracker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:           client,
		store:            store,
		assets:           assets,
		tracker:          trk,
		logger:           logger,
		assetConcurrency: defaultAssetConcurrency,
		inflight:         make(map[string]*inflightHandle),
	}
}

// SetAssetConcurrency bounds how many assets download in parallel per unit.
func (s *Service) SetAssetConcurrency(n int) {
	if n > 0 {
		s.assetConcurrency = n
	}
}

// SyncMetadata refreshes the lightweight unit index. Safe to call while
// downloads are in flight: it writes only metadata, never download state.
// On fetch failure the cache is left untouched and a *domain.SyncError is
// returned; stale-but-available beats empty.
func (s *Service) SyncMetadata(ctx context.Context) (domain.SyncResult, error) {
	units, err := s.client.GetUnits(ctx)
	if err != nil {
		s.logger.Error("metadata sync failed", "error", err)
		return domain.SyncResult{}, &domain.SyncError{Err: err}
	}
	if err := s.store.UpsertMetadata(units); err != nil {
		s.logger.Error("failed to save unit metadata", "error", err)
		return domain.SyncResult{}, &domain.SyncError{Err: err}
	}

	entries, err := s.store.ListUnits()
	if err != nil {
		return domain.SyncResult{}, &domain.SyncError{Err: err}
	}
	s.logger.Debug("metadata synced", "fetched", len(units), "known", len(entries))
	return domain.SyncResult{Units: len(entries), Fetched: len(units)}, nil
}

// ListUnits returns every known unit with its download state.
func (s *Service) ListUnits() ([]domain.UnitCacheEntry, error) {
	return s.store.ListUnits()
}

// GetUnitDetail returns full lesson and exercise content only when the unit's
// download is completed. Otherwise it returns the metadata-only projection
// together with domain.ErrNotDownloaded so the UI can prompt for a download.
// Partial content is never served as complete.
func (s *Service) GetUnitDetail(unitID string) (domain.UnitDetail, error) {
	meta, ok := s.store.GetMetadata(unitID)
	if !ok {
		return domain.UnitDetail{}, domain.ErrUnitNotFound
	}

	state := s.tracker.State(unitID)
	entry := domain.UnitCacheEntry{UnitMetadata: meta, State: state}

	if state.Status != domain.StatusCompleted {
		return domain.UnitDetail{Entry: entry}, domain.ErrNotDownloaded
	}

	content, ok := s.store.GetContent(unitID)
	if !ok {
		// Completed state without content means the cache was tampered
		// with externally; treat as not downloaded rather than serve
		// a hole.
		s.logger.Warn("completed unit missing content", "unitID", unitID)
		return domain.UnitDetail{Entry: entry}, domain.ErrNotDownloaded
	}

	return domain.UnitDetail{Entry: entry, Content: content}, nil
}

// RequestDownload fetches a unit's full content and all manifest assets for
// offline use. Idempotent under concurrent taps: the guarded idle/failed ->
// pending transition admits exactly one attempt, and losers get the winner's
// current state back with no error.
//
// On any failure the unit's partial assets are purged before the failed state
// becomes visible, and a *domain.DownloadError is returned. There is no
// automatic retry; the user re-triggers.
func (s *Service) RequestDownload(ctx context.Context, unitID string, onProgress domain.ProgressFunc) (domain.DownloadState, error) {
	state, started, err := s.tracker.Begin(unitID)
	if err != nil {
		return state, err
	}
	if !started {
		s.logger.Debug("download request ignored", "unitID", unitID, "status", state.Status)
		return state, nil
	}

	dctx, cancel := context.WithCancel(ctx)
	handle := s.registerInflight(unitID, cancel)
	defer s.clearInflight(unitID, handle)

	state, err = s.tracker.Start(unitID)
	if err != nil {
		// Deleted between pending and start; deletion already purged.
		if errors.Is(err, domain.ErrIllegalTransition) {
			s.purgeLocal(unitID)
			return s.tracker.State(unitID), nil
		}
		return state, err
	}

	s.logger.Info("download started", "unitID", unitID)

	content, err := s.client.GetUnitContent(dctx, unitID)
	if err != nil {
		return s.failDownload(unitID, &domain.DownloadError{UnitID: unitID, Err: err})
	}

	manifest := content.AssetManifest
	assetIDs := make([]string, len(manifest))
	for i, entry := range manifest {
		assetIDs[i] = entry.AssetID
	}

	if _, err := s.tracker.RecordAssets(unitID, assetIDs); err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			s.purgeLocal(unitID)
			return s.tracker.State(unitID), nil
		}
		return s.failDownload(unitID, &domain.DownloadError{UnitID: unitID, Err: err})
	}

	records, err := s.downloadAssets(dctx, unitID, manifest, onProgress)
	if err != nil {
		if dctx.Err() != nil && ctx.Err() == nil {
			// Cancelled by deletion; deletion owns the end state.
			s.purgeLocal(unitID)
			return s.tracker.State(unitID), nil
		}
		var dlErr *domain.DownloadError
		if !errors.As(err, &dlErr) {
			dlErr = &domain.DownloadError{UnitID: unitID, Err: err}
		}
		return s.failDownload(unitID, dlErr)
	}

	// All assets fetched; verify presence and size before declaring victory.
	var total int64
	for _, rec := range records {
		if !s.assets.Has(rec) {
			return s.failDownload(unitID, &domain.DownloadError{
				UnitID:  unitID,
				AssetID: rec.AssetID,
				Err:     errors.New("asset missing after download"),
			})
		}
		total += rec.ByteSize
	}

	if err := s.store.SaveAssets(unitID, records); err != nil {
		return s.failDownload(unitID, &domain.DownloadError{UnitID: unitID, Err: err})
	}
	if err := s.store.SaveContent(unitID, content); err != nil {
		return s.failDownload(unitID, &domain.DownloadError{UnitID: unitID, Err: err})
	}

	state, err = s.tracker.Complete(unitID, assetIDs, total)
	if err != nil {
		// A concurrent delete won the race after assets were persisted.
		// Honor it: nothing may remain on disk.
		if errors.Is(err, domain.ErrIllegalTransition) {
			s.purgeLocal(unitID)
			return s.tracker.State(unitID), nil
		}
		return state, err
	}

	if onProgress != nil {
		onProgress(domain.DownloadProgress{UnitID: unitID, Loaded: len(records), Total: len(records), Bytes: total, Done: true})
	}
	s.logger.Info("download completed", "unitID", unitID, "assets", len(records), "bytes", total)
	return state, nil
}

// DeleteDownload removes a unit's offline content and assets. Safe to call
// while a download is in flight: the in-flight attempt is cancelled and the
// end state is always idle with zero leaked assets.
func (s *Service) DeleteDownload(unitID string) (domain.DownloadState, error) {
	s.cancelInflight(unitID)

	state, err := s.tracker.Reset(unitID)
	if err != nil {
		return state, err
	}
	s.purgeLocal(unitID)

	s.logger.Info("download deleted", "unitID", unitID)
	return state, nil
}

// StorageBytes sums on-disk usage across completed units.
func (s *Service) StorageBytes() int64 {
	entries, err := s.store.ListUnits()
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.State.Status == domain.StatusCompleted {
			total += e.State.StorageBytes
		}
	}
	return total
}

// downloadAssets fetches and persists every manifest entry with bounded
// concurrency, aborting the whole group on the first error. Each worker
// checks for cancellation before persisting so deletion never leaks files.
func (s *Service) downloadAssets(ctx context.Context, unitID string, manifest []domain.AssetManifestEntry, onProgress domain.ProgressFunc) ([]domain.AssetRecord, error) {
	records := make([]domain.AssetRecord, len(manifest))

	var progressMu sync.Mutex
	loaded := 0
	var bytes int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.assetConcurrency)

	for i, entry := range manifest {
		i, entry := i, entry
		g.Go(func() error {
			data, err := s.client.FetchAsset(gctx, entry)
			if err != nil {
				return &domain.DownloadError{UnitID: unitID, AssetID: entry.AssetID, Err: err}
			}

			// Cancellation checkpoint: never persist after deletion.
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			rec, err := s.assets.Write(entry.AssetID, unitID, entry.Kind, data, entry.Checksum)
			if err != nil {
				return &domain.DownloadError{UnitID: unitID, AssetID: entry.AssetID, Err: err}
			}
			records[i] = rec

			progressMu.Lock()
			loaded++
			bytes += rec.ByteSize
			if onProgress != nil {
				onProgress(domain.DownloadProgress{UnitID: unitID, Loaded: loaded, Total: len(manifest), Bytes: bytes})
			}
			progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// failDownload purges partial state and flips the unit to failed. The purge
// happens before the transition so no reader of a failed unit ever observes
// leftover assets.
func (s *Service) failDownload(unitID string, cause *domain.DownloadError) (domain.DownloadState, error) {
	s.purgeLocal(unitID)

	state, err := s.tracker.Fail(unitID, cause)
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			// Deleted while failing; idle with nothing on disk is fine.
			s.purgeLocal(unitID)
			return s.tracker.State(unitID), nil
		}
		return state, err
	}

	s.logger.Warn("download failed", "unitID", unitID, "error", cause)
	return state, cause
}

// purgeLocal removes everything a download may have persisted for a unit.
func (s *Service) purgeLocal(unitID string) {
	if err := s.assets.PurgeUnit(unitID); err != nil {
		s.logger.Error("failed to purge unit assets", "unitID", unitID, "error", err)
	}
	s.store.DeleteAssets(unitID)
	s.store.DeleteContent(unitID)
}

// === In-flight download registry ===

func (s *Service) registerInflight(unitID string, cancel context.CancelFunc) *inflightHandle {
	handle := &inflightHandle{cancel: cancel}
	s.mu.Lock()
	s.inflight[unitID] = handle
	s.mu.Unlock()
	return handle
}

func (s *Service) clearInflight(unitID string, handle *inflightHandle) {
	handle.cancel()
	s.mu.Lock()
	if s.inflight[unitID] == handle {
		delete(s.inflight, unitID)
	}
	s.mu.Unlock()
}

func (s *Service) cancelInflight(unitID string) {
	s.mu.Lock()
	handle, ok := s.inflight[unitID]
	s.mu.Unlock()
	if ok {
		handle.cancel()
	}
}
