package domain

// DownloadProgress reports progress during a unit download.
type DownloadProgress struct {
	UnitID string
	Loaded int // Assets persisted so far
	Total  int // Assets in the manifest
	Bytes  int64
	Done   bool
	Error  error
}

// ProgressFunc receives progress updates during a unit download.
type ProgressFunc func(progress DownloadProgress)

// SyncResult summarizes one metadata refresh.
type SyncResult struct {
	Units   int // Units known after the refresh
	Fetched int // Units returned by the server this cycle
}
