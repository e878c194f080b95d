package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/config"
	"github.com/Randomizando3/DramaBoxV2/internal/handlers"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
	"github.com/Randomizando3/DramaBoxV2/internal/services"
	"github.com/Randomizando3/DramaBoxV2/internal/websocket"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenTable map[string]string

func (t tokenTable) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := t[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"email": uid + "@example.com"}}, nil
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := &RateLimiter{visitors: map[string]*Visitor{}, now: func() time.Time { return now }}

	assert.True(t, rl.Allow("ip|api", 2, time.Minute))
	assert.True(t, rl.Allow("ip|api", 2, time.Minute))
	assert.False(t, rl.Allow("ip|api", 2, time.Minute))
	assert.True(t, rl.Allow("ip|auth", 2, time.Minute))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("ip|api", 2, time.Minute))

	now = now.Add(11 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.visitors)
}

func TestRateLimitFor(t *testing.T) {
	tests := []struct {
		path   string
		bucket string
	}{
		{"/api/v1/auth/login", "auth"},
		{"/api/v1/community/series/s1/videos", "upload"},
		{"/api/v1/me/photo", "upload"},
		{"/api/v1/affiliates/leads", "leads"},
		{"/api/v1/dramas", "api"},
	}
	for _, tt := range tests {
		bucket, limit := rateLimitFor(tt.path)
		assert.Equal(t, tt.bucket, bucket, tt.path)
		assert.Positive(t, limit)
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:    "test",
		Firebase:       config.FirebaseConfig{DatabaseURL: config.MemoryDatabaseURL},
		StorageDriver:  config.StorageDriverFirebase,
		AllowedOrigins: []string{"http://localhost:3000"},
		AdminUIDs:      []string{"admin"},
		Location:       time.UTC,
	}

	store := rtdb.NewMemoryStore()
	hub := websocket.NewHub()
	wallet := services.NewWalletService(store, nil, hub)
	profiles := services.NewProfileService(store, nil)
	catalog := services.NewCatalogService(store, profiles)
	community := services.NewCommunityService(store, profiles, nil, hub)
	rewards := services.NewRewardsService(store, wallet, profiles, hub, cfg.Location)
	affiliates := services.NewAffiliateService(store, wallet, hub, "https://dramabox.test/pagina.php")

	app := &application{
		cfg:       cfg,
		verifier:  tokenTable{"tok-u1": "u1", "tok-admin": "admin"},
		hub:       hub,
		accounts:  handlers.NewAccountHandler(services.NewAccountService(nil, store, profiles, affiliates)),
		profile:   handlers.NewProfileHandler(profiles, rewards),
		wallet:    handlers.NewWalletHandler(wallet, services.NewPurchaseService(nil, wallet)),
		catalog:   handlers.NewCatalogHandler(catalog),
		community: handlers.NewCommunityHandler(community),
		library:   handlers.NewLibraryHandler(services.NewLibraryService(store, catalog, community)),
		rewards:   handlers.NewRewardsHandler(rewards),
		affiliate: handlers.NewAffiliateHandler(affiliates),
		ws:        handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := setupOptimizedRouter(cfg, NewRateLimiter(ctx))
	setupRoutes(router, app)
	return router
}

func request(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := request(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"websocket":{"connections":0,"users":0}`)
	assert.Contains(t, w.Body.String(), `"status":"disabled"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRouteProtection(t *testing.T) {
	router := newTestRouter(t)

	w := request(router, http.MethodGet, "/api/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(router, http.MethodGet, "/api/v1/me", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(router, http.MethodGet, "/api/v1/me", "tok-u1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")

	credit := `{"userId":"u1","coins":25}`
	w = request(router, http.MethodPost, "/api/v1/admin/wallet/credit", "tok-u1", credit)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = request(router, http.MethodPost, "/api/v1/admin/wallet/credit", "tok-admin", credit)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodGet, "/api/v1/wallet", "tok-u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"coins":25`)
}

func TestPublicCatalogIsCached(t *testing.T) {
	router := newTestRouter(t)

	w := request(router, http.MethodGet, "/api/v1/dramas", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))

	w = request(router, http.MethodGet, "/api/v1/dramas/series", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodGet, "/api/v1/dramas/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
