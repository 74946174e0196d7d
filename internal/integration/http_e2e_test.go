//go:build integration || !unit

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbp_reviews/internal/adapters/gbp"
	"gbp_reviews/internal/adapters/googleauth"
	server "gbp_reviews/internal/adapters/http_server"
	redisad "gbp_reviews/internal/adapters/redis"
	"gbp_reviews/internal/app"
)

// fakeGoogle stands in for the OAuth token endpoint and the three Business
// Profile APIs on a single test server.
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("refresh_token") != "rt-good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-e2e","token_type":"Bearer","expires_in":3599}`))
	})
	mux.HandleFunc("/v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		_, _ = w.Write([]byte(`{"accounts":[{"name":"accounts/123"}]}`))
	})
	mux.HandleFunc("/v1/accounts/123/locations", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		_, _ = w.Write([]byte(`{"locations":[{"name":"accounts/123/locations/456","metadata":{"placeId":"pl-e2e"}}]}`))
	})
	mux.HandleFunc("/v4/accounts/123/locations/456/reviews", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		_, _ = w.Write([]byte(`{
			"reviews":[
				{"reviewer":{"displayName":"Nicolas G."},"starRating":"FIVE","comment":"Excellent","createTime":"2025-01-28T10:00:00Z"},
				{"reviewer":{"displayName":"Ana"},"starRating":"FOUR","comment":"","createTime":"2025-01-27T09:00:00Z"}
			],
			"averageRating":4.8,
			"totalReviewCount":32
		}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	require.Equal(t, "Bearer at-e2e", r.Header.Get("Authorization"))
}

func newAPI(t *testing.T, google *httptest.Server, redisAddr string) *httptest.Server {
	t.Helper()

	auth := googleauth.New("client-e2e", "secret-e2e", "https://example.test/cb", "rt-good").
		WithEndpoint(google.URL+"/auth", google.URL+"/token")
	profile := gbp.New(gbp.Options{
		AccountsBase:  google.URL,
		LocationsBase: google.URL,
		ReviewsBase:   google.URL,
		RPS:           100,
	})
	durable := redisad.New(redisAddr, "", 0, time.Hour)
	store := app.NewSnapshotStore(durable, app.NewMemoryTier())
	sync := app.NewSyncService(auth, profile, store)
	gate := app.NewGate("cron-secret")

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Sync: sync, Gate: gate, Auth: auth})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	return res.StatusCode
}

type reviewsBody struct {
	Error            string  `json:"error"`
	Rating           float64 `json:"rating"`
	TotalReviewCount int     `json:"totalReviewCount"`
	Reviews          []struct {
		Author     string  `json:"author"`
		Rating     int     `json:"rating"`
		Comment    string  `json:"comment"`
		CreateTime string  `json:"createTime"`
		URL        *string `json:"url"`
	} `json:"reviews"`
	LastUpdated *string `json:"lastUpdated"`
}

func TestHTTP_EndToEnd_SyncThenRead(t *testing.T) {
	mr := miniredis.RunT(t)
	api := newAPI(t, fakeGoogle(t), mr.Addr())

	// read before any synchronization: degraded payload, not a pipeline error
	var before reviewsBody
	code := getJSON(t, api.URL+"/v1/reviews", &before)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.NotEmpty(t, before.Error)
	assert.Empty(t, before.Reviews)
	assert.Nil(t, before.LastUpdated)

	// trigger without credentials is denied before any pipeline work
	var denied map[string]any
	code = getJSON(t, api.URL+"/v1/sync", &denied)
	assert.Equal(t, http.StatusUnauthorized, code)

	// manual trigger with the shared secret
	var sync struct {
		Success          bool    `json:"success"`
		Synced           int     `json:"synced"`
		Rating           float64 `json:"rating"`
		TotalReviewCount int     `json:"totalReviewCount"`
		LastUpdated      string  `json:"lastUpdated"`
	}
	code = getJSON(t, api.URL+"/v1/sync?secret=cron-secret", &sync)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, sync.Success)
	assert.Equal(t, 2, sync.Synced)
	assert.Equal(t, 4.8, sync.Rating)
	assert.Equal(t, 32, sync.TotalReviewCount)
	assert.NotEmpty(t, sync.LastUpdated)

	// read path serves the cached snapshot
	var after reviewsBody
	code = getJSON(t, api.URL+"/v1/reviews", &after)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.8, after.Rating)
	assert.Equal(t, 32, after.TotalReviewCount)
	require.Len(t, after.Reviews, 2)
	assert.Equal(t, "Nicolas G.", after.Reviews[0].Author)
	assert.Equal(t, 5, after.Reviews[0].Rating)
	require.NotNil(t, after.Reviews[0].URL)
	assert.Equal(t, "https://search.google.com/local/reviews?placeid=pl-e2e", *after.Reviews[0].URL)

	// durable tier goes down; the in-process tier keeps serving
	mr.Close()
	var degraded reviewsBody
	code = getJSON(t, api.URL+"/v1/reviews", &degraded)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.8, degraded.Rating)
}

func TestHTTP_SchedulerMarkerChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	api := newAPI(t, fakeGoogle(t), mr.Addr())

	req, err := http.NewRequest(http.MethodGet, api.URL+"/v1/cron/sync", nil)
	require.NoError(t, err)
	req.Header.Set("X-Sync-Scheduler", "1")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHTTP_PipelineFailureReportsServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	google := fakeGoogle(t)

	auth := googleauth.New("client-e2e", "secret-e2e", "https://example.test/cb", "rt-revoked").
		WithEndpoint(google.URL+"/auth", google.URL+"/token")
	profile := gbp.New(gbp.Options{AccountsBase: google.URL, LocationsBase: google.URL, ReviewsBase: google.URL, RPS: 100})
	store := app.NewSnapshotStore(redisad.New(mr.Addr(), "", 0, time.Hour), app.NewMemoryTier())
	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Sync: app.NewSyncService(auth, profile, store),
		Gate: app.NewGate("cron-secret"),
		Auth: auth,
	})
	api := httptest.NewServer(srv.Mux())
	t.Cleanup(api.Close)

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	code := getJSON(t, api.URL+"/v1/sync?secret=cron-secret", &out)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "refresh")

	// the failed attempt cached nothing
	var after reviewsBody
	code = getJSON(t, api.URL+"/v1/reviews", &after)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
