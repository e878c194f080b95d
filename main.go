// main.go - DramaBox API server
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/config"
	"github.com/Randomizando3/DramaBoxV2/internal/database"
	"github.com/Randomizando3/DramaBoxV2/internal/handlers"
	"github.com/Randomizando3/DramaBoxV2/internal/identity"
	"github.com/Randomizando3/DramaBoxV2/internal/middleware"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"
	"github.com/Randomizando3/DramaBoxV2/internal/services"
	"github.com/Randomizando3/DramaBoxV2/internal/storage"
	"github.com/Randomizando3/DramaBoxV2/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase service
	firebaseService, err := services.NewFirebaseService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Firebase service:", err)
	}

	store, err := openStore(ctx, cfg, firebaseService)
	if err != nil {
		log.Fatal("Failed to open Realtime Database:", err)
	}

	uploader, err := openUploader(ctx, cfg, firebaseService)
	if err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	// The Postgres ledger is optional, coins live in the Realtime Database
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		log.Println("🔧 Running database migrations...")
		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
	}

	// Realtime hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Initialize services
	var ledger services.Ledger = services.NoopLedger{}
	if db != nil {
		ledger = services.NewPostgresLedger(db)
	}
	walletService := services.NewWalletService(store, ledger, hub)
	purchaseService := services.NewPurchaseService(db, walletService)
	profileService := services.NewProfileService(store, uploader)
	catalogService := services.NewCatalogService(store, profileService)
	communityService := services.NewCommunityService(store, profileService, uploader, hub)
	libraryService := services.NewLibraryService(store, catalogService, communityService)
	rewardsService := services.NewRewardsService(store, walletService, profileService, hub, cfg.Location)
	affiliateService := services.NewAffiliateService(store, walletService, hub, cfg.AffiliateLandingURL)
	accountService := services.NewAccountService(identity.NewClient(cfg.Firebase.APIKey), store, profileService, affiliateService)

	if err := rewardsService.EnsureCatalogDefaults(ctx); err != nil {
		log.Printf("⚠️ Failed to seed reward defaults: %v", err)
	}

	app := &application{
		cfg:       cfg,
		verifier:  firebaseService,
		db:        db,
		hub:       hub,
		accounts:  handlers.NewAccountHandler(accountService),
		profile:   handlers.NewProfileHandler(profileService, rewardsService),
		wallet:    handlers.NewWalletHandler(walletService, purchaseService),
		catalog:   handlers.NewCatalogHandler(catalogService),
		community: handlers.NewCommunityHandler(communityService),
		library:   handlers.NewLibraryHandler(libraryService),
		rewards:   handlers.NewRewardsHandler(rewardsService),
		affiliate: handlers.NewAffiliateHandler(affiliateService),
		ws:        handlers.NewWebSocketHandler(hub, cfg.AllowedOrigins),
	}

	// Initialize rate limiter
	rateLimiter := NewRateLimiter(ctx)

	router := setupOptimizedRouter(cfg, rateLimiter)
	setupRoutes(router, app)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Shutdown: %v", err)
		}
	}()

	log.Printf("🚀 DramaBox API starting on port %s", cfg.Port)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("🔥 Realtime Database: %s", databaseMode(cfg))
	log.Printf("☁️  Media storage: %s", cfg.StorageDriver)
	if db != nil {
		log.Printf("💾 Postgres ledger enabled")
	} else {
		log.Printf("💾 Postgres ledger disabled, transaction history unavailable")
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("👋 Server stopped")
}

func databaseMode(cfg *config.Config) string {
	if cfg.UsesMemoryDatabase() {
		return "in-memory"
	}
	return cfg.Firebase.DatabaseURL
}

func openStore(ctx context.Context, cfg *config.Config, fb *services.FirebaseService) (rtdb.Store, error) {
	if cfg.UsesMemoryDatabase() {
		log.Println("⚠️ Using the in-memory database, data is lost on restart")
		return rtdb.NewMemoryStore(), nil
	}
	client, err := fb.Database(ctx)
	if err != nil {
		return nil, err
	}
	return rtdb.NewFirebaseStore(client), nil
}

func openUploader(ctx context.Context, cfg *config.Config, fb *services.FirebaseService) (storage.Uploader, error) {
	if cfg.StorageDriver == config.StorageDriverR2 {
		r2, err := storage.NewR2Client(cfg.R2Config)
		if err != nil {
			return nil, err
		}
		return r2, nil
	}
	client, err := fb.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucket, err := storage.NewFirebaseBucket(client, cfg.Firebase.StorageBucket)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

// application holds what the routes need
type application struct {
	cfg      *config.Config
	verifier services.TokenVerifier
	db       *sqlx.DB
	hub      *websocket.Hub

	accounts  *handlers.AccountHandler
	profile   *handlers.ProfileHandler
	wallet    *handlers.WalletHandler
	catalog   *handlers.CatalogHandler
	community *handlers.CommunityHandler
	library   *handlers.LibraryHandler
	rewards   *handlers.RewardsHandler
	affiliate *handlers.AffiliateHandler
	ws        *handlers.WebSocketHandler
}

func setupOptimizedRouter(cfg *config.Config, rateLimiter *RateLimiter) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestID())

	// Video bodies are already compressed
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedExtensions([]string{
		".mp4", ".mov", ".webm", ".jpg", ".jpeg", ".png", ".webp"})))

	router.Use(createRateLimitMiddleware(rateLimiter))

	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			"Cache-Control", "If-None-Match",
			"Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version",
		},
		ExposeHeaders: []string{
			"Content-Length", "Cache-Control", "ETag", "X-Request-ID",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	})

	return router
}

func setupRoutes(router *gin.Engine, app *application) {
	router.GET("/health", func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"app":       "dramabox-api",
			"database":  databaseMode(app.cfg),
			"storage":   app.cfg.StorageDriver,
			"ledger":    database.HealthCheck(app.db),
			"websocket": app.hub.Stats(),
		})
	})

	api := router.Group("/api/v1")

	// ===============================
	// WEBSOCKET
	// ===============================
	api.GET("/ws", middleware.FirebaseAuth(app.verifier), app.ws.Connect)

	// ===============================
	// AUTH ROUTES
	// ===============================
	byIPAndPath := func(c *gin.Context) string { return c.ClientIP() + c.FullPath() }

	auth := api.Group("/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/register", app.accounts.Register)
		auth.POST("/login", app.accounts.Login)
		auth.POST("/forgot-password", middleware.Cooldown(30*time.Second, byIPAndPath), app.accounts.ForgotPassword)
	}

	// ===============================
	// PUBLIC ROUTES
	// ===============================
	public := api.Group("")
	public.Use(middleware.OptionalAuth(app.verifier), middleware.PublicCache(time.Minute))
	{
		// Editorial catalog
		public.GET("/dramas", app.catalog.Discover)
		public.GET("/dramas/series", app.catalog.SeriesList)
		public.GET("/dramas/:dramaId", app.catalog.GetDrama)

		// Community feeds
		public.GET("/community/feed", app.community.Feed)
		public.GET("/community/episodes/feed", app.community.EpisodeFeed)
		public.GET("/community/series/:seriesId", app.community.GetSeries)
		public.GET("/community/series/:seriesId/episodes", app.community.GetSeriesEpisodes)
		public.POST("/community/series/:seriesId/share", middleware.Cooldown(10*time.Second, func(c *gin.Context) string {
			return c.ClientIP() + "|" + c.Param("seriesId")
		}), app.community.Share)

		public.GET("/rewards/shop", app.rewards.Shop)
		public.GET("/wallet/packages", app.wallet.GetCoinPackages)

		// Landing page lead capture
		public.POST("/affiliates/leads", middleware.Cooldown(2*time.Second, byIPAndPath), app.affiliate.CaptureLead)
	}

	// ===============================
	// PROTECTED ROUTES
	// ===============================
	protected := api.Group("")
	protected.Use(middleware.FirebaseAuth(app.verifier), middleware.NoStore())
	{
		// ===== PROFILE =====
		protected.GET("/me", app.profile.GetMe)
		protected.PUT("/me", app.profile.UpdateMe)
		protected.PUT("/me/plan", app.profile.ChangePlan)
		protected.GET("/me/stats", app.profile.Stats)
		protected.POST("/me/photo", middleware.BodyLimit(6<<20), app.profile.UploadPhoto)

		// ===== WALLET =====
		protected.GET("/wallet", app.wallet.GetWallet)
		protected.GET("/wallet/transactions", app.wallet.GetTransactions)
		protected.POST("/wallet/purchase-requests", app.wallet.CreatePurchaseRequest)

		protected.GET("/dramas/:dramaId/episodes/:episodeId", app.catalog.PlayEpisode)

		// ===== LIBRARY =====
		protected.GET("/library/playlist", app.library.GetPlaylist)
		protected.POST("/library/playlist", app.library.TogglePlaylist)
		protected.DELETE("/library/playlist/:dramaId", app.library.RemoveFromPlaylist)
		protected.GET("/library/saved/:dramaId", app.library.OpenSaved)
		protected.GET("/library/continue", app.library.GetContinue)
		protected.PUT("/library/continue", app.library.UpsertContinue)

		// ===== CREATOR =====
		creator := protected.Group("/community")
		{
			creator.GET("/mine", app.community.MySeries)
			creator.GET("/dashboard", app.community.Dashboard)
			creator.POST("/series", app.community.CreateSeries)
			creator.PUT("/series/:seriesId", app.community.UpdateSeries)
			creator.POST("/series/:seriesId/episodes", app.community.AddEpisode)
			creator.PUT("/series/:seriesId/episodes/:episodeId", app.community.UpdateEpisode)
			creator.DELETE("/series/:seriesId/episodes/:episodeId", app.community.RemoveEpisode)
			creator.POST("/series/:seriesId/cover", middleware.BodyLimit(11<<20), app.community.UploadCover)
			creator.POST("/series/:seriesId/videos", middleware.BodyLimit(501<<20), app.community.UploadEpisodeVideo)

			creator.POST("/series/:seriesId/like", app.community.ToggleLike)
			creator.POST("/series/:seriesId/watch", app.community.Watch)
		}

		// ===== REWARDS =====
		rewards := protected.Group("/rewards")
		{
			rewards.GET("", app.rewards.Overview)
			rewards.GET("/checkin", app.rewards.CheckinView)
			rewards.POST("/checkin", app.rewards.Checkin)
			rewards.GET("/missions", app.rewards.Missions)
			rewards.POST("/missions/:missionId/complete", app.rewards.CompleteMission)
			rewards.POST("/missions/:missionId/submit", app.rewards.SubmitMission)
			rewards.POST("/shop/:itemId/buy", app.rewards.BuyVip)
		}

		protected.GET("/affiliates/me", app.affiliate.Summary)

		// ===============================
		// ADMIN ROUTES
		// ===============================
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly(app.cfg.IsAdmin))
		{
			admin.POST("/dramas", app.catalog.CreateDrama)
			admin.PUT("/dramas/:dramaId", app.catalog.UpdateDrama)
			admin.DELETE("/dramas/:dramaId", app.catalog.DeleteDrama)
			admin.POST("/dramas/:dramaId/episodes", app.catalog.CreateEpisode)
			admin.PUT("/dramas/:dramaId/episodes/:episodeId", app.catalog.UpdateEpisode)

			admin.POST("/wallet/credit", app.wallet.AdminCredit)
			admin.GET("/purchase-requests", app.wallet.GetPendingPurchases)
			admin.POST("/purchase-requests/:requestId/approve", app.wallet.ApprovePurchase)
			admin.POST("/purchase-requests/:requestId/reject", app.wallet.RejectPurchase)

			admin.POST("/rewards/seed", app.rewards.SeedDefaults)
			admin.POST("/rewards/manual/:userId/:missionId", app.rewards.ReviewMission)

			admin.GET("/stats", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"websocket": app.hub.Stats(),
					"ledger":    database.HealthCheck(app.db),
				})
			})
		}
	}
}

// ===============================
// RATE LIMITING
// ===============================

type RateLimiter struct {
	visitors map[string]*Visitor
	mutex    sync.Mutex
	now      func() time.Time
}

type Visitor struct {
	requests    int
	windowStart time.Time
	lastSeen    time.Time
}

// NewRateLimiter evicts idle visitors until ctx is done
func NewRateLimiter(ctx context.Context) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
		now:      time.Now,
	}
	go rl.cleanupRoutine(ctx)
	return rl
}

// Allow counts a request from key in a fixed window
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	visitor, exists := rl.visitors[key]
	if !exists || now.Sub(visitor.windowStart) > window {
		rl.visitors[key] = &Visitor{requests: 1, windowStart: now, lastSeen: now}
		return true
	}

	visitor.lastSeen = now
	if visitor.requests >= limit {
		return false
	}
	visitor.requests++
	return true
}

func (rl *RateLimiter) cleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for key, visitor := range rl.visitors {
		if visitor.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// rateLimitFor picks the per-minute budget of a path. Auth endpoints are
// tight, uploads tighter, reads loose.
func rateLimitFor(path string) (string, int) {
	switch {
	case strings.HasPrefix(path, "/api/v1/auth/"):
		return "auth", 20
	case strings.HasSuffix(path, "/cover"), strings.HasSuffix(path, "/videos"), strings.HasSuffix(path, "/photo"):
		return "upload", 10
	case strings.HasPrefix(path, "/api/v1/affiliates/leads"):
		return "leads", 30
	default:
		return "api", 300
	}
}

func createRateLimitMiddleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	const window = time.Minute

	return func(c *gin.Context) {
		// Sockets are long-lived, the upgrade is not metered
		if c.GetHeader("Upgrade") == "websocket" {
			c.Next()
			return
		}

		bucket, limit := rateLimitFor(c.Request.URL.Path)
		if !rateLimiter.Allow(c.ClientIP()+"|"+bucket, limit, window) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "60")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
				"limit":   limit,
				"window":  window.String(),
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Next()
	}
}
