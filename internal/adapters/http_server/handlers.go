// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"gbp_reviews/internal/adapters/googleauth"
	"gbp_reviews/internal/app"
	"gbp_reviews/internal/domain"
)

type Handlers struct {
	Sync *app.SyncService
	Gate *app.Gate
	Auth *googleauth.Manager
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews", h.getReviews)
	s.mux.Options("/v1/reviews", h.reviewsPreflight)
	s.mux.Get("/v1/sync", h.runSync)
	s.mux.Get("/v1/cron/sync", h.runSync)
	s.mux.Get("/google/auth/start", h.authStart)
	s.mux.Get("/google/auth/callback", h.authCallback)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// ---- read path ----

func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *Handlers) reviewsPreflight(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	w.WriteHeader(http.StatusOK)
}

// getReviews serves the last cached snapshot without touching the
// synchronization pipeline. An empty cache yields a degraded payload with
// a 503, distinct from a pipeline error.
func (h *Handlers) getReviews(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	w.Header().Set("Cache-Control", "s-maxage=3600, stale-while-revalidate=600")

	snap, found := h.Sync.Cached(r.Context())
	if !found {
		writeJSON(w, http.StatusServiceUnavailable, struct {
			Error            string          `json:"error"`
			Rating           float64         `json:"rating"`
			TotalReviewCount int             `json:"totalReviewCount"`
			Reviews          []domain.Review `json:"reviews"`
			LastUpdated      *string         `json:"lastUpdated"`
		}{
			Error:   "Reviews not yet cached. Trigger /v1/sync first.",
			Rating:  domain.DefaultRating,
			Reviews: []domain.Review{},
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ---- synchronization triggers ----

func (h *Handlers) runSync(w http.ResponseWriter, r *http.Request) {
	trigger := app.Trigger{
		SchedulerMarker: r.Header.Get("X-Sync-Scheduler") != "",
		Secret:          r.URL.Query().Get("secret"),
	}
	if !h.Gate.Authorized(trigger) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": "Unauthorized. Use ?secret=SYNC_SECRET (manual) or call from the scheduler.",
		})
		return
	}

	start := time.Now()
	snap, err := h.Sync.Synchronize(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("synchronization failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"synced":           len(snap.Reviews),
		"rating":           snap.Rating,
		"totalReviewCount": snap.TotalReviewCount,
		"lastUpdated":      snap.LastUpdated,
		"duration":         time.Since(start).Round(time.Millisecond).String(),
	})
}

// ---- one-time interactive grant ----

func (h *Handlers) authStart(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.Auth.AuthURL(), http.StatusFound)
}

// authCallback surfaces the refresh token to the human operator, who
// stores it in the environment by hand. Nothing is persisted here.
func (h *Handlers) authCallback(w http.ResponseWriter, r *http.Request) {
	if e := r.URL.Query().Get("error"); e != "" {
		http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	tok, err := h.Auth.ExchangeCode(r.Context(), code)
	if err != nil {
		http.Error(w, "error exchanging code: "+err.Error(), http.StatusInternalServerError)
		return
	}

	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = "(no refresh token returned; redo the grant, consent is forced)"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html>
<head><title>OAuth OK</title></head>
<body>
  <h1>Authentication successful</h1>
  <h2>Refresh token to copy</h2>
  <pre>%s</pre>
  <ol>
    <li>Set GOOGLE_REFRESH_TOKEN to the value above</li>
    <li>Restart the service</li>
    <li>Test /v1/sync then /v1/reviews</li>
  </ol>
</body>
</html>`, html.EscapeString(refresh))
}
