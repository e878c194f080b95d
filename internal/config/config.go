// ===============================
// internal/config/config.go - Application Configuration
// ===============================

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"
)

// Storage drivers
const (
	StorageDriverFirebase = "firebase"
	StorageDriverR2       = "r2"
)

// MemoryDatabaseURL makes the service run against an in-process JSON tree.
const MemoryDatabaseURL = "memory://"

// R2Config holds Cloudflare R2 configuration
type R2Config struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// FirebaseConfig holds everything needed to reach the Firebase project
type FirebaseConfig struct {
	ProjectID     string
	Credentials   string // Path to service account JSON file
	DatabaseURL   string // Realtime Database URL
	StorageBucket string
	APIKey        string // Web API key used by the Auth REST endpoints
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Environment string
	Port        string

	// Optional Postgres coin ledger
	DatabaseURL string

	Firebase FirebaseConfig

	// Media storage
	StorageDriver string
	R2Config      R2Config

	// CORS configuration
	AllowedOrigins []string

	// Firebase uids allowed on /admin routes
	AdminUIDs []string

	// Referral landing page, the affiliate code is appended as ?ref=
	AffiliateLandingURL string

	// Daily reward date keys are computed in this location
	Location *time.Location
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Environment: getEnv("GIN_MODE", "debug"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Firebase: FirebaseConfig{
			ProjectID:     getEnv("FIREBASE_PROJECT_ID", ""),
			Credentials:   getEnv("FIREBASE_CREDENTIALS", ""),
			DatabaseURL:   getEnv("FIREBASE_DATABASE_URL", ""),
			StorageBucket: getEnv("FIREBASE_STORAGE_BUCKET", ""),
			APIKey:        getEnv("FIREBASE_API_KEY", ""),
		},
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFirebase)),
		R2Config: R2Config{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", "dramabox-media"),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		AffiliateLandingURL: getEnv("AFFILIATE_LANDING_URL", "https://izzihub.com.br/pagina.php"),
	}

	// Set public URL for R2
	if config.R2Config.PublicURL == "" && config.R2Config.AccountID != "" && config.R2Config.BucketName != "" {
		config.R2Config.PublicURL = fmt.Sprintf("https://%s.%s.r2.cloudflarestorage.com",
			config.R2Config.BucketName, config.R2Config.AccountID)
	}

	config.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	config.AdminUIDs = splitList(getEnv("ADMIN_UIDS", ""))

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, ConfigError{Message: fmt.Sprintf("invalid APP_TIMEZONE: %v", err)}
	}
	config.Location = loc

	// Validate required configuration
	if config.Firebase.ProjectID == "" {
		return nil, ErrMissingFirebaseConfig
	}

	if config.Firebase.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	switch config.StorageDriver {
	case StorageDriverFirebase:
	case StorageDriverR2:
		if config.R2Config.AccountID == "" || config.R2Config.AccessKey == "" || config.R2Config.SecretKey == "" {
			return nil, ErrMissingR2Config
		}
	default:
		return nil, ErrUnknownStorageDriver
	}

	return config, nil
}

// UsesMemoryDatabase reports whether the RTDB is replaced by the in-process tree
func (c *Config) UsesMemoryDatabase() bool {
	return c.Firebase.DatabaseURL == MemoryDatabaseURL
}

// IsAdmin reports whether uid is listed in ADMIN_UIDS
func (c *Config) IsAdmin(uid string) bool {
	for _, admin := range c.AdminUIDs {
		if admin == uid {
			return true
		}
	}
	return false
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Configuration errors
var (
	ErrMissingDatabaseURL    = ConfigError{Message: "FIREBASE_DATABASE_URL environment variable is required"}
	ErrMissingR2Config       = ConfigError{Message: "R2 configuration (R2_ACCOUNT_ID, R2_ACCESS_KEY, R2_SECRET_KEY) is required when STORAGE_DRIVER=r2"}
	ErrMissingFirebaseConfig = ConfigError{Message: "FIREBASE_PROJECT_ID is required"}
	ErrUnknownStorageDriver  = ConfigError{Message: "STORAGE_DRIVER must be firebase or r2"}
)

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
