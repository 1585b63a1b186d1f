package storage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultInterests seeds the store when no interests file is configured.
var defaultInterests = map[int][]string{
	1: {"books", "hi-tech"},
	2: {"pets", "tv"},
	3: {"travel", "music"},
	4: {"cinema", "geek"},
	5: {"sport", "cars"},
}

type cacheEntry struct {
	score     float64
	expiresAt time.Time
}

// MemoryStore is the in-process Store implementation. The interests mapping
// is fixed after construction; only the score cache mutates, guarded by the
// RWMutex, so concurrent requests need no further coordination.
type MemoryStore struct {
	interests map[int][]string

	mu    sync.RWMutex
	cache map[string]cacheEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interests: defaultInterests,
		cache:     make(map[string]cacheEntry),
		now:       time.Now,
	}
}

// NewMemoryStoreWithInterests builds a store seeded with the given mapping
// instead of the built-in one.
func NewMemoryStoreWithInterests(interests map[int][]string) *MemoryStore {
	s := NewMemoryStore()
	s.interests = interests
	return s
}

// LoadInterestsFile parses a YAML file mapping client id to a list of
// interest tags.
func LoadInterestsFile(path string) (map[int][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interests file: %w", err)
	}
	var interests map[int][]string
	if err := yaml.Unmarshal(data, &interests); err != nil {
		return nil, fmt.Errorf("failed to parse interests file %q: %w", path, err)
	}
	return interests, nil
}

func (s *MemoryStore) Interests(ctx context.Context, clientID int) ([]string, error) {
	tags, ok := s.interests[clientID]
	if !ok {
		return []string{}, nil
	}
	// Copy so callers cannot mutate the seed data.
	out := make([]string, len(tags))
	copy(out, tags)
	return out, nil
}

func (s *MemoryStore) CacheGet(ctx context.Context, key string) (float64, bool) {
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.cache, key)
		s.mu.Unlock()
		return 0, false
	}
	return entry.score, true
}

func (s *MemoryStore) CacheSet(ctx context.Context, key string, score float64, ttl time.Duration) {
	s.mu.Lock()
	s.cache[key] = cacheEntry{score: score, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}
