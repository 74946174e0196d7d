package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"gbp_reviews/internal/adapters/observability"
	"gbp_reviews/internal/domain"
)

// SyncService runs the full synchronization pipeline: credential refresh,
// profile resolution, review fetch, cache write. One invocation is one
// logical unit of work; any failure aborts with no cache change. Concurrent
// invocations are not serialized: each snapshot is independently
// re-derivable from upstream, so last-writer-wins is fine.
type SyncService struct {
	tokens  domain.TokenSource
	profile domain.ProfileClient
	store   *SnapshotStore
}

func NewSyncService(t domain.TokenSource, p domain.ProfileClient, s *SnapshotStore) *SyncService {
	return &SyncService{tokens: t, profile: p, store: s}
}

func (s *SyncService) Synchronize(ctx context.Context) (snap domain.Snapshot, err error) {
	defer func() { observability.ObserveSync(err) }()

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	accountID, err := s.profile.ResolveAccount(ctx, token)
	if err != nil {
		return domain.Snapshot{}, err
	}
	locationID, placeID, err := s.profile.ResolveLocation(ctx, token, accountID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap, err = s.profile.FetchSnapshot(ctx, token, accountID, locationID, placeID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	s.store.Set(ctx, snap)

	log.Info().
		Int("synced", len(snap.Reviews)).
		Float64("rating", snap.Rating).
		Int("total", snap.TotalReviewCount).
		Msg("snapshot synchronized")
	return snap, nil
}

// Cached returns the last stored snapshot without touching the pipeline.
func (s *SyncService) Cached(ctx context.Context) (domain.Snapshot, bool) {
	return s.store.Get(ctx)
}
