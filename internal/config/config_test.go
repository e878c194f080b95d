package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "dramabox-test")
	t.Setenv("FIREBASE_DATABASE_URL", "https://dramabox-test.firebaseio.com")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverFirebase, cfg.StorageDriver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.AdminUIDs)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.False(t, cfg.UsesMemoryDatabase())
}

func TestLoadRequiresProjectAndDatabase(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("FIREBASE_DATABASE_URL", "https://x.firebaseio.com")
	_, err := Load()
	assert.Equal(t, ErrMissingFirebaseConfig, err)

	t.Setenv("FIREBASE_PROJECT_ID", "p")
	t.Setenv("FIREBASE_DATABASE_URL", "")
	_, err = Load()
	assert.Equal(t, ErrMissingDatabaseURL, err)
}

func TestLoadR2DriverNeedsCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_DRIVER", "R2")

	_, err := Load()
	assert.Equal(t, ErrMissingR2Config, err)

	t.Setenv("R2_ACCOUNT_ID", "acc")
	t.Setenv("R2_ACCESS_KEY", "key")
	t.Setenv("R2_SECRET_KEY", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dramabox-media.acc.r2.cloudflarestorage.com", cfg.R2Config.PublicURL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := Load()
	assert.Equal(t, ErrUnknownStorageDriver, err)
}

func TestAdminListAndTimezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ADMIN_UIDS", " a1 , ,b2")
	t.Setenv("APP_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("FIREBASE_DATABASE_URL", MemoryDatabaseURL)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b2"}, cfg.AdminUIDs)
	assert.True(t, cfg.IsAdmin("b2"))
	assert.False(t, cfg.IsAdmin("c3"))
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())
	assert.True(t, cfg.UsesMemoryDatabase())
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.IsType(t, ConfigError{}, err)
}
