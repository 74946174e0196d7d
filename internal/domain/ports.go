package domain

import "context"

// TokenSource exchanges the stored long-lived credential for a short-lived
// access token. Implementations must not cache the access token: every call
// is a fresh upstream exchange.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ProfileClient resolves the target business profile and fetches its
// normalized review snapshot.
type ProfileClient interface {
	ResolveAccount(ctx context.Context, token string) (accountID string, err error)
	ResolveLocation(ctx context.Context, token, accountID string) (locationID, placeID string, err error)
	FetchSnapshot(ctx context.Context, token, accountID, locationID, placeID string) (Snapshot, error)
}

// CacheTier is one storage level of the snapshot cache. A miss is reported
// via found=false without error; an error means the tier itself is
// unavailable.
type CacheTier interface {
	Get(ctx context.Context) (snap Snapshot, found bool, err error)
	Set(ctx context.Context, snap Snapshot) error
}
