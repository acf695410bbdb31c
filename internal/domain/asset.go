package domain

// AssetKind distinguishes binary asset types
type AssetKind string

const (
	AssetKindAudio AssetKind = "audio"
	AssetKindImage AssetKind = "image"
)

// AssetRecord describes one downloaded asset payload on disk.
// Records are owned exclusively by their unit and are purged together with it.
type AssetRecord struct {
	AssetID   string
	UnitID    string
	Kind      AssetKind
	LocalPath string
	ByteSize  int64
	Checksum  string // sha256 hex of the payload; empty if the server sent none
}
