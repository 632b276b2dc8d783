package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load("")

	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/openmeet")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")

	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/openmeet")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")

	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenTTL)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "development", cfg.Environment)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/openmeet")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load("")

	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadYAMLFileOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  port: 7070\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("DATABASE_URL", "postgres://localhost/openmeet")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port) // env wins
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/openmeet")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load("/nonexistent/config.yaml")

	require.Error(t, err)
}
