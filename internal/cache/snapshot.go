// Package cache holds recently computed portfolio snapshots.
package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// SnapshotCache maps portfolio IDs to msgpack-encoded snapshots that
// expire after a fixed TTL. Entries are stored encoded, so every Get
// returns an independent copy.
type SnapshotCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
	log     zerolog.Logger
}

// NewSnapshotCache creates an empty cache whose entries live for ttl.
func NewSnapshotCache(ttl time.Duration, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
		log:     log.With().Str("component", "cache").Logger(),
	}
}

// Get returns the cached snapshot for id if present and not expired.
func (c *SnapshotCache) Get(id string) (*domain.Snapshot, bool) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, id)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	var s domain.Snapshot
	if err := msgpack.Unmarshal(e.data, &s); err != nil {
		c.log.Error().Err(err).Str("portfolio_id", id).Msg("dropping undecodable snapshot")
		c.Evict(id)
		return nil, false
	}
	return &s, true
}

// Put stores s under its portfolio ID, replacing any previous entry.
func (c *SnapshotCache) Put(s *domain.Snapshot) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		c.log.Error().Err(err).Str("portfolio_id", s.ID).Msg("failed to encode snapshot")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.ID] = entry{data: data, expiresAt: c.now().Add(c.ttl)}
}

// Evict drops the entry for id.
func (c *SnapshotCache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Purge drops every expired entry and returns how many were removed.
func (c *SnapshotCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired or not.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
