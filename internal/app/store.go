package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"gbp_reviews/internal/adapters/observability"
	"gbp_reviews/internal/domain"
)

// MemoryTier is the in-process fallback: a single snapshot cell with no
// TTL. It is overwritten by the next successful Set and lost on restart.
// Injected explicitly so tests can substitute a pre-seeded instance.
type MemoryTier struct {
	mu   sync.RWMutex
	snap domain.Snapshot
	set  bool
}

func NewMemoryTier() *MemoryTier { return &MemoryTier{} }

func (m *MemoryTier) Get(context.Context) (domain.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, m.set, nil
}

func (m *MemoryTier) Set(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap, m.set = snap, true
	return nil
}

// SnapshotStore is the two-tier read-through/write-through snapshot cache.
// Durable-tier failures are absorbed: reads fall back to the in-process
// tier and writes succeed once the in-process tier holds the value, so a
// durable outage never surfaces to callers. The caller cannot distinguish
// "never synced" from "durable tier down"; re-sync resolves both.
type SnapshotStore struct {
	durable domain.CacheTier
	memory  domain.CacheTier
}

func NewSnapshotStore(durable, memory domain.CacheTier) *SnapshotStore {
	return &SnapshotStore{durable: durable, memory: memory}
}

// Get returns the most recent snapshot, or found=false when neither tier
// holds one. It never fails.
func (s *SnapshotStore) Get(ctx context.Context) (domain.Snapshot, bool) {
	if s.durable != nil {
		snap, found, err := s.durable.Get(ctx)
		if err == nil && found {
			return snap, true
		}
		if err != nil {
			observability.ObserveCache("redis", "degraded")
			log.Warn().Err(err).Msg("durable cache read failed; serving in-process tier")
		}
	}
	snap, found, _ := s.memory.Get(ctx)
	return snap, found
}

// Set writes the in-process tier first; that value is guaranteed for the
// rest of the process's life. The durable write follows and its failure is
// recorded as a diagnostic only.
func (s *SnapshotStore) Set(ctx context.Context, snap domain.Snapshot) {
	_ = s.memory.Set(ctx, snap)

	if s.durable == nil {
		return
	}
	if err := s.durable.Set(ctx, snap); err != nil {
		observability.ObserveCache("redis", "degraded")
		log.Warn().Err(err).Msg("durable cache write failed; snapshot held in-process only")
	}
}
