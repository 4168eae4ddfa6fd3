package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fleetledger/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "fleetledger", cfg.Auth.Issuer)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50000, cfg.Ledger.ParallelThreshold)
	assert.Equal(t, 5, cfg.Fuel.DefaultBufferPercent)
	assert.Equal(t, "postgres://postgres:@localhost:5432/fleetledger?sslmode=disable", cfg.ConnectionString())
	assert.Empty(t, cfg.Import.ProfilesFile)
	assert.Empty(t, cfg.Snapshot.Schedule)
	assert.Equal(t, []string{"xlsx", "pdf"}, cfg.Snapshot.Formats)
	assert.Equal(t, 5*time.Minute, cfg.Snapshot.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LEDGER_PARALLEL_THRESHOLD", "10")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10, cfg.Ledger.ParallelThreshold)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		require.NoError(t, os.Unsetenv("JWT_SECRET"))

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("SnapshotWithoutCompanies", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("SNAPSHOT_SCHEDULE", "0 2 1 * *")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("BufferOutOfRange", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("FUEL_DEFAULT_BUFFER_PERCENT", "150")

		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestLoadTUI(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("TUI_COMPANY_ID", "3f1f8a9e-6c1a-4a53-9d9b-0c39f3f09a11")
		t.Setenv("DB_MAX_OPEN_CONNS", "4")

		cfg, err := config.LoadTUI()
		require.NoError(t, err)

		assert.Equal(t, "3f1f8a9e-6c1a-4a53-9d9b-0c39f3f09a11", cfg.CompanyID)
		assert.Equal(t, 4, cfg.DB.MaxOpenConns)
		assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
		assert.Equal(t, 5, cfg.Fuel.DefaultBufferPercent)
	})

	t.Run("MissingCompany", func(t *testing.T) {
		t.Setenv("TUI_COMPANY_ID", "")
		require.NoError(t, os.Unsetenv("TUI_COMPANY_ID"))

		_, err := config.LoadTUI()
		assert.Error(t, err)
	})
}
