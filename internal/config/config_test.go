package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := Load()

	req.NoError(err)
	req.Equal(DriverMySQL, cfg.DBDriver)
	req.Equal("8080", cfg.ServerPort)
	req.Equal("development", cfg.Env)
	req.Equal([]string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins)
	req.Equal(5*time.Second, cfg.StoreTimeout)
	req.Equal(64, cfg.SendBuffer)
	req.Equal(50.0, cfg.MinPasswordBits)
	req.True(cfg.RequireLoginToken)
}

func TestLoad_TrimsOrigins(t *testing.T) {
	req := require.New(t)
	t.Setenv("ALLOWED_ORIGINS", " http://a.example , http://b.example ,")

	cfg, err := Load()

	req.NoError(err)
	req.Equal([]string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("REQUIRE_LOGIN_TOKEN", "false")

	cfg, err := Load()

	req.NoError(err)
	req.Equal(DriverSQLite, cfg.DBDriver)
	req.Equal(":memory:", cfg.SQLitePath)
	req.Equal(250*time.Millisecond, cfg.StoreTimeout)
	req.False(cfg.RequireLoginToken)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()

	require.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	req := require.New(t)
	t.Setenv("ENV", "production")

	_, err := Load()
	req.ErrorContains(err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	req.NoError(err)
	req.False(cfg.IsDevelopment())
}

func TestValidate_RejectsNonPositiveBuffer(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.SendBuffer = 0

	require.Error(t, cfg.Validate())
}
