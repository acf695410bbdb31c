package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mwenda/somo/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names. Metadata and download state are deliberately separate buckets:
// a metadata sync writes only bucketUnits and can never clobber a transition.
var (
	bucketUnits   = []byte("units")
	bucketState   = []byte("state")
	bucketContent = []byte("content")
	bucketAssets  = []byte("assets")
)

// CacheStore implements domain.Store using BoltDB.
type CacheStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewCacheStore opens the cache database under baseCacheDir. An empty
// baseCacheDir gives a memory-only store (used by tests).
func NewCacheStore(baseCacheDir, serverURL string) (*CacheStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &CacheStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "somo.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketUnits, bucketState, bucketContent, bucketAssets} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CacheStore{db: db, cache: make(map[string][]byte)}, nil
}

// hashServerURL keys the cache directory by server so switching accounts
// never mixes caches.
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *CacheStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CacheStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CacheStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *CacheStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// keys returns every key present in a bucket. In memory-only mode the
// promotion cache is authoritative; otherwise BoltDB is.
func (s *CacheStore) keys(bucket []byte) []string {
	if s.db == nil {
		prefix := string(bucket) + ":"
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out []string
		for k := range s.cache {
			if strings.HasPrefix(k, prefix) {
				out = append(out, strings.TrimPrefix(k, prefix))
			}
		}
		return out
	}

	var out []string
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out
}

// === Unit metadata ===

func (s *CacheStore) UpsertMetadata(units []domain.UnitMetadata) error {
	for _, u := range units {
		if u.ID == "" {
			continue
		}
		if err := s.set(bucketUnits, u.ID, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheStore) GetMetadata(unitID string) (domain.UnitMetadata, bool) {
	var meta domain.UnitMetadata
	ok := s.get(bucketUnits, unitID, &meta)
	return meta, ok
}

func (s *CacheStore) ListUnits() ([]domain.UnitCacheEntry, error) {
	ids := s.keys(bucketUnits)

	entries := make([]domain.UnitCacheEntry, 0, len(ids))
	for _, id := range ids {
		meta, ok := s.GetMetadata(id)
		if !ok {
			continue
		}
		state, ok := s.GetState(id)
		if !ok {
			state = domain.NewDownloadState()
		}
		entries = append(entries, domain.UnitCacheEntry{UnitMetadata: meta, State: state})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Title != entries[j].Title {
			return entries[i].Title < entries[j].Title
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// === Download state ===

func (s *CacheStore) GetState(unitID string) (domain.DownloadState, bool) {
	var state domain.DownloadState
	ok := s.get(bucketState, unitID, &state)
	return state, ok
}

func (s *CacheStore) SaveState(unitID string, state domain.DownloadState) error {
	return s.set(bucketState, unitID, state)
}

// === Full unit content ===

func (s *CacheStore) GetContent(unitID string) (*domain.UnitContent, bool) {
	var content domain.UnitContent
	if !s.get(bucketContent, unitID, &content) {
		return nil, false
	}
	return &content, true
}

func (s *CacheStore) SaveContent(unitID string, content *domain.UnitContent) error {
	return s.set(bucketContent, unitID, content)
}

func (s *CacheStore) DeleteContent(unitID string) {
	s.delete(bucketContent, unitID)
}

// === Asset records ===

func (s *CacheStore) GetAssets(unitID string) ([]domain.AssetRecord, bool) {
	var assets []domain.AssetRecord
	ok := s.get(bucketAssets, unitID, &assets)
	return assets, ok && len(assets) > 0
}

func (s *CacheStore) SaveAssets(unitID string, assets []domain.AssetRecord) error {
	return s.set(bucketAssets, unitID, assets)
}

func (s *CacheStore) DeleteAssets(unitID string) {
	s.delete(bucketAssets, unitID)
}
