// Package config loads and validates Tripboard configuration.
//
// Sources, lowest precedence first: built-in defaults, the YAML file named
// by TRIPBOARD_CONFIG, a .env file in the working directory, and the process
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the client and development server settings.
type Config struct {
	// APIURL is the base URL of the remote REST API, including the /api prefix.
	APIURL string `yaml:"api_url"`

	// AppOrigin is the origin used to build shareable invite links.
	AppOrigin string `yaml:"app_origin"`

	// StorePath is the sqlite file holding the persistent token store.
	StorePath string `yaml:"store"`

	// HTTPTimeout bounds every API request. Zero disables the timeout.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// MapboxToken and MapboxURL configure place search. Search is disabled
	// when the token is empty.
	MapboxToken string `yaml:"mapbox_token"`
	MapboxURL   string `yaml:"mapbox_url"`

	// LogLevel controls the minimum log level. Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Port, JWTSecret and CORSOrigins are read by the development API server only.
	Port        string   `yaml:"port"`
	JWTSecret   string   `yaml:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		APIURL:      "http://localhost:8080/api",
		AppOrigin:   "http://localhost:5173",
		StorePath:   defaultStorePath(),
		HTTPTimeout: 30 * time.Second,
		MapboxURL:   "https://api.mapbox.com",
		LogLevel:    "info",
		Port:        "8080",
		CORSOrigins: []string{"http://localhost:5173"},
	}
}

// Load builds a Config from defaults, the optional YAML file, an optional
// .env file and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("TRIPBOARD_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("config.Load: %s: %w", path, err)
		}
	}

	cfg.APIURL = getEnv("TRIPBOARD_API_URL", cfg.APIURL)
	cfg.AppOrigin = getEnv("TRIPBOARD_APP_ORIGIN", cfg.AppOrigin)
	cfg.StorePath = getEnv("TRIPBOARD_STORE", cfg.StorePath)
	cfg.MapboxToken = getEnv("MAPBOX_TOKEN", cfg.MapboxToken)
	cfg.MapboxURL = getEnv("MAPBOX_URL", cfg.MapboxURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("TRIPBOARD_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: TRIPBOARD_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.AppOrigin = strings.TrimRight(cfg.AppOrigin, "/")
	if cfg.HTTPTimeout < 0 {
		return Config{}, fmt.Errorf("config.Load: http timeout must not be negative")
	}
	return cfg, nil
}

// ValidateServer returns an error listing any settings the development API
// server needs that are not set.
func (c Config) ValidateServer() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Port == "" {
		missing = append(missing, "PORT")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// loadFile merges a YAML file into c. Keys absent from the file keep their
// current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "tripboard.db")
	}
	return filepath.Join(dir, "tripboard", "local.db")
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
