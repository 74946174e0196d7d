// internal/adapters/gbp/client.go
package gbp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"gbp_reviews/internal/domain"
)

const (
	defaultAccountsBase  = "https://mybusinessaccountmanagement.googleapis.com"
	defaultLocationsBase = "https://mybusinessbusinessinformation.googleapis.com"
	defaultReviewsBase   = "https://mybusiness.googleapis.com"
)

// Options configures the Business Profile client. Zero-value base URLs use
// the production Google endpoints; overrides pin the account/location
// instead of discovering them.
type Options struct {
	AccountOverride  string
	LocationOverride string
	RPS              int

	AccountsBase  string
	LocationsBase string
	ReviewsBase   string
}

type Client struct {
	accountsBase  string
	locationsBase string
	reviewsBase   string
	hc            *http.Client
	rl            *rate.Limiter

	accountOverride  string
	locationOverride string
}

func New(o Options) *Client {
	if o.RPS <= 0 {
		o.RPS = 5
	}
	base := func(v, def string) string {
		if v == "" {
			return def
		}
		return strings.TrimRight(v, "/")
	}
	return &Client{
		accountsBase:     base(o.AccountsBase, defaultAccountsBase),
		locationsBase:    base(o.LocationsBase, defaultLocationsBase),
		reviewsBase:      base(o.ReviewsBase, defaultReviewsBase),
		hc:               &http.Client{Timeout: 20 * time.Second},
		rl:               rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		accountOverride:  o.AccountOverride,
		locationOverride: o.LocationOverride,
	}
}

// ---- upstream payloads (typed at the boundary; absent fields default) ----

type accountsResponse struct {
	Accounts []struct {
		Name string `json:"name"` // "accounts/123"
	} `json:"accounts"`
}

type locationsResponse struct {
	Locations []upstreamLocation `json:"locations"`
}

type upstreamLocation struct {
	Name     string `json:"name"` // "accounts/123/locations/456"
	Metadata struct {
		PlaceID string `json:"placeId"`
	} `json:"metadata"`
}

type reviewsResponse struct {
	Reviews []upstreamReview `json:"reviews"`
	// Pointers distinguish "omitted" from zero; omission triggers the
	// policy defaults.
	AverageRating    *float64 `json:"averageRating"`
	TotalReviewCount *int     `json:"totalReviewCount"`
}

type upstreamReview struct {
	Reviewer struct {
		DisplayName string `json:"displayName"`
	} `json:"reviewer"`
	StarRating string `json:"starRating"`
	Comment    string `json:"comment"`
	CreateTime string `json:"createTime"`
}

// ---- Public API ----

// ResolveAccount returns the configured account override, or the first
// account the token grants access to.
func (c *Client) ResolveAccount(ctx context.Context, token string) (string, error) {
	if c.accountOverride != "" {
		return c.accountOverride, nil
	}

	var out accountsResponse
	if err := c.get(ctx, c.accountsBase+"/v1/accounts", token, &out); err != nil {
		return "", wrapUpstream(err, "failed to fetch accounts")
	}
	if len(out.Accounts) == 0 {
		return "", domain.Errf(domain.KindResolutionFailure, "no accounts found (is the grant from an owner/manager of a Business Profile?)")
	}
	return strings.TrimPrefix(out.Accounts[0].Name, "accounts/"), nil
}

// ResolveLocation picks the account's location and extracts its external
// place identifier from metadata, when present. With a configured override
// it selects the location whose resource name ends in the override;
// an unmatched override falls back to the first location.
func (c *Client) ResolveLocation(ctx context.Context, token, accountID string) (string, string, error) {
	u := fmt.Sprintf("%s/v1/accounts/%s/locations?readMask=name,metadata", c.locationsBase, accountID)

	var out locationsResponse
	if err := c.get(ctx, u, token, &out); err != nil {
		return "", "", wrapUpstream(err, "failed to fetch locations")
	}
	if len(out.Locations) == 0 {
		return "", "", domain.Errf(domain.KindResolutionFailure, "no locations found on account %s", accountID)
	}

	loc := out.Locations[0]
	if c.locationOverride != "" {
		matched := false
		for _, l := range out.Locations {
			if strings.HasSuffix(l.Name, "/"+c.locationOverride) {
				loc, matched = l, true
				break
			}
		}
		if !matched {
			log.Warn().Str("override", c.locationOverride).Str("selected", loc.Name).
				Msg("location override matched nothing; falling back to first location")
		}
	}

	locationID := c.locationOverride
	if locationID == "" {
		parts := strings.Split(loc.Name, "/")
		locationID = parts[len(parts)-1]
	}
	if locationID == "" {
		return "", "", domain.Errf(domain.KindResolutionFailure, "unable to determine location id from %q", loc.Name)
	}
	return locationID, loc.Metadata.PlaceID, nil
}

// FetchSnapshot retrieves the raw review collection and normalizes it.
// The aggregate rating and count come straight from upstream; the 5-item
// review list is a display subset and is never used to recompute them.
func (c *Client) FetchSnapshot(ctx context.Context, token, accountID, locationID, placeID string) (domain.Snapshot, error) {
	u := fmt.Sprintf("%s/v4/accounts/%s/locations/%s/reviews", c.reviewsBase, accountID, locationID)

	var out reviewsResponse
	if err := c.get(ctx, u, token, &out); err != nil {
		return domain.Snapshot{}, wrapUpstream(err, "failed to fetch reviews")
	}

	// One public URL per snapshot, derived once from the place identifier.
	var reviewsURL *string
	if placeID != "" {
		link := "https://search.google.com/local/reviews?placeid=" + placeID
		reviewsURL = &link
	}

	raw := out.Reviews
	if len(raw) > domain.MaxReviews {
		raw = raw[:domain.MaxReviews]
	}
	reviews := make([]domain.Review, 0, len(raw))
	for _, r := range raw {
		author := r.Reviewer.DisplayName
		if author == "" {
			author = "Client"
		}
		reviews = append(reviews, domain.Review{
			Author:     author,
			Rating:     domain.StarRating(r.StarRating),
			Comment:    r.Comment,
			CreateTime: r.CreateTime,
			URL:        reviewsURL,
		})
	}

	snap := domain.Snapshot{
		Rating:           domain.DefaultRating,
		TotalReviewCount: len(reviews),
		Reviews:          reviews,
	}
	if out.AverageRating != nil {
		snap.Rating = *out.AverageRating
	}
	if out.TotalReviewCount != nil {
		snap.TotalReviewCount = *out.TotalReviewCount
	}
	return snap, nil
}

// ---- Internals ----

type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("remote %d: %s", e.status, e.body)
}

func wrapUpstream(err error, msg string) error {
	if he, ok := err.(*httpError); ok {
		return domain.ErrWithBody(domain.KindUpstreamFetch, fmt.Sprintf("%s (status %d)", msg, he.status), he.body)
	}
	return domain.Errf(domain.KindUpstreamFetch, "%s: %v", msg, err)
}

// get performs a GET with client-side rate limiting and a JSON decode into
// out. Single attempt: a failed call fails the whole synchronization, and
// retrying is the trigger's concern.
func (c *Client) get(ctx context.Context, url, token string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gbp-reviews/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpError{status: resp.StatusCode, body: strings.TrimSpace(string(b))}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
