package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"keywordlens/pkg/logger"
)

// MemoryStore is the in-process history engine: an append-capped log per
// analysis type, fronted by a ristretto cache for the hot list reads every
// page issues after each query.
type MemoryStore struct {
	mu         sync.RWMutex
	byType     map[string][]Entry
	byID       map[string]Entry
	versions   map[string]uint64
	maxEntries int
	cache      *ristretto.Cache
	log        *logger.Logger
}

// NewMemoryStore creates a history store keeping at most maxEntries per
// analysis type (0 means HardLimit).
func NewMemoryStore(maxEntries int) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = HardLimit
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 14,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create history cache: %w", err)
	}

	return &MemoryStore{
		byType:     make(map[string][]Entry),
		byID:       make(map[string]Entry),
		versions:   make(map[string]uint64),
		maxEntries: maxEntries,
		cache:      cache,
		log:        logger.GetLogger().Component("history_store"),
	}, nil
}

// Append records one analysis, assigning an id and timestamp when absent,
// and trims the per-type log to its cap. The type's cache generation is
// bumped so stale list results fall out of the cache.
func (s *MemoryStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Type == "" {
		return Entry{}, fmt.Errorf("history entry requires an analysis type")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.byType[entry.Type], entry)
	if len(entries) > s.maxEntries {
		for _, evicted := range entries[:len(entries)-s.maxEntries] {
			delete(s.byID, evicted.ID)
		}
		entries = entries[len(entries)-s.maxEntries:]
	}
	s.byType[entry.Type] = entries
	s.byID[entry.ID] = entry
	s.versions[entry.Type]++

	return entry, nil
}

// List returns up to limit entries of one type, newest first. limit <= 0
// falls back to DefaultLimit; anything above HardLimit is capped.
func (s *MemoryStore) List(ctx context.Context, analysisType string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > HardLimit {
		limit = HardLimit
	}

	s.mu.RLock()
	version := s.versions[analysisType]
	s.mu.RUnlock()

	cacheKey := fmt.Sprintf("%s:v%d:l%d", analysisType, version, limit)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if entries, ok := cached.([]Entry); ok {
			return entries, nil
		}
	}

	s.mu.RLock()
	stored := s.byType[analysisType]
	if len(stored) > limit {
		stored = stored[len(stored)-limit:]
	}
	entries := make([]Entry, len(stored))
	for i, entry := range stored {
		entries[len(stored)-1-i] = entry
	}
	s.mu.RUnlock()

	s.cache.Set(cacheKey, entries, int64(len(entries)+1))
	return entries, nil
}

// Get looks up one entry by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.byID[id]
	return entry, ok, nil
}

// Close releases the cache resources.
func (s *MemoryStore) Close() {
	s.cache.Close()
}
