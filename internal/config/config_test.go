package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripboard/tripboard/internal/config"
)

var allKeys = []string{
	"TRIPBOARD_CONFIG", "TRIPBOARD_API_URL", "TRIPBOARD_APP_ORIGIN", "TRIPBOARD_STORE",
	"TRIPBOARD_HTTP_TIMEOUT", "MAPBOX_TOKEN", "MAPBOX_URL", "LOG_LEVEL",
	"PORT", "JWT_SECRET", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that every value falls back to its default when
// nothing is configured.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api", cfg.APIURL)
	require.Equal(t, "http://localhost:5173", cfg.AppOrigin)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, "local.db", filepath.Base(cfg.StorePath))
	require.Empty(t, cfg.MapboxToken)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIPBOARD_API_URL", "https://trips.example.com/api/")
	t.Setenv("TRIPBOARD_APP_ORIGIN", "https://app.example.com/")
	t.Setenv("TRIPBOARD_STORE", "/tmp/tb.db")
	t.Setenv("TRIPBOARD_HTTP_TIMEOUT", "5s")
	t.Setenv("MAPBOX_TOKEN", "pk.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "https://trips.example.com/api", cfg.APIURL)
	require.Equal(t, "https://app.example.com", cfg.AppOrigin)
	require.Equal(t, "/tmp/tb.db", cfg.StorePath)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "pk.test", cfg.MapboxToken)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

// TestLoad_yamlFile verifies that the YAML file is applied and that the
// environment still wins over it.
func TestLoad_yamlFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "tripboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: http://yaml.example/api
app_origin: http://yaml.example
http_timeout: 12s
log_level: warn
cors_origins: [http://a.example, http://b.example]
`), 0o600))
	t.Setenv("TRIPBOARD_CONFIG", path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "http://yaml.example/api", cfg.APIURL)
	require.Equal(t, "http://yaml.example", cfg.AppOrigin)
	require.Equal(t, 12*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "error", cfg.LogLevel)
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	require.Equal(t, "8080", cfg.Port)
}

func TestLoad_missingYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIPBOARD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "nope.yaml")
}

func TestLoad_badTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIPBOARD_HTTP_TIMEOUT", "soon")

	_, err := config.Load()

	require.ErrorContains(t, err, "TRIPBOARD_HTTP_TIMEOUT")
}

// TestValidateServer_missingRequired verifies that the server check names the
// missing JWT_SECRET.
func TestValidateServer_missingRequired(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	err = cfg.ValidateServer()
	require.Error(t, err)
	require.ErrorContains(t, err, "JWT_SECRET")

	cfg.JWTSecret = "x"
	require.NoError(t, cfg.ValidateServer())
}
