package assetstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mwenda/somo/internal/domain"
)

const dirPermissions = 0755

// DiskStore implements domain.AssetStore on the local filesystem.
// Payloads live under baseDir/<unitID>/<assetID>.<ext> so an entire unit can
// be purged by removing one directory.
type DiskStore struct {
	baseDir string
	logger  *slog.Logger
}

// NewDiskStore creates an asset store rooted at baseDir.
func NewDiskStore(baseDir string, logger *slog.Logger) (*DiskStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(baseDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir, logger: logger}, nil
}

func (d *DiskStore) Write(assetID, unitID string, kind domain.AssetKind, data []byte, checksum string) (domain.AssetRecord, error) {
	sum := sha256.Sum256(data)
	actual := hex.EncodeToString(sum[:])
	if checksum != "" && checksum != actual {
		return domain.AssetRecord{}, fmt.Errorf("checksum mismatch for asset %s: want %s got %s", assetID, checksum, actual)
	}

	unitDir := filepath.Join(d.baseDir, unitID)
	if err := os.MkdirAll(unitDir, dirPermissions); err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to create unit directory: %w", err)
	}

	finalPath := filepath.Join(unitDir, assetID+extFor(kind))

	// Stage to a uniquely named temp file, then rename. Readers only ever
	// see complete payloads.
	tmpPath := filepath.Join(unitDir, "."+uuid.NewString()+".part")
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to stage asset %s: %w", assetID, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return domain.AssetRecord{}, fmt.Errorf("failed to persist asset %s: %w", assetID, err)
	}

	d.logger.Debug("asset written", "assetID", assetID, "unitID", unitID, "bytes", len(data))

	return domain.AssetRecord{
		AssetID:   assetID,
		UnitID:    unitID,
		Kind:      kind,
		LocalPath: finalPath,
		ByteSize:  int64(len(data)),
		Checksum:  actual,
	}, nil
}

func (d *DiskStore) Has(record domain.AssetRecord) bool {
	info, err := os.Stat(record.LocalPath)
	if err != nil {
		return false
	}
	return info.Size() == record.ByteSize
}

func (d *DiskStore) Delete(record domain.AssetRecord) error {
	if err := os.Remove(record.LocalPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *DiskStore) PurgeUnit(unitID string) error {
	if unitID == "" {
		return nil
	}
	dir := filepath.Join(d.baseDir, unitID)
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to purge unit assets: %w", err)
	}
	d.logger.Debug("unit assets purged", "unitID", unitID)
	return nil
}

func extFor(kind domain.AssetKind) string {
	switch kind {
	case domain.AssetKindAudio:
		return ".mp3"
	case domain.AssetKindImage:
		return ".jpg"
	default:
		return ".bin"
	}
}
