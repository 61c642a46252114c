package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables overlaid onto the TOML configuration by [ApplyEnv].
const (
	EnvYouTubeAPIKey   = "YOUTUBE_API_KEY"
	EnvDatabasePath    = "TUNEUP_DATABASE"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvRedisPassword   = "REDIS_PASSWORD"
	EnvCatalogID       = "CATALOG_CLIENT_ID"
	EnvCatalogSecret   = "CATALOG_CLIENT_SECRET"
	EnvServerPort      = "TUNEUP_PORT"
	EnvLogLevel        = "TUNEUP_LOG_LEVEL"
	EnvIngestRateLimit = "TUNEUP_INGEST_RATE"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Redis       RedisConfig       `toml:"redis"`
	Ingest      IngestConfig      `toml:"ingest"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
	Catalog CatalogConfig `toml:"catalog"`
}

// YouTubeConfig contains YouTube Data API settings. An empty APIKey disables track resolution.
type YouTubeConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// CatalogConfig contains client-credentials settings for the external music-data service.
type CatalogConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	BaseURL      string `toml:"base_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
//
// APIURL is where CLI commands reach a running server.
type ServerConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIURL string `toml:"api_url"`
}

// RedisConfig selects the Redis-backed playback session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTLHours int    `toml:"ttl_hours"`
}

// IngestConfig tunes concurrent track resolution during catalog ingestion.
type IngestConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Addr returns the host:port the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv reads .env files (default ".env") into the process environment without overriding existing variables.
//
// A missing file is not an error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto config. Set variables win over file values.
func ApplyEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(EnvYouTubeAPIKey, &config.Credentials.YouTube.APIKey)
	setString(EnvDatabasePath, &config.Database.Path)
	setString(EnvRedisAddr, &config.Redis.Addr)
	setString(EnvRedisPassword, &config.Redis.Password)
	setString(EnvCatalogID, &config.Credentials.Catalog.ClientID)
	setString(EnvCatalogSecret, &config.Credentials.Catalog.ClientSecret)
	setString(EnvLogLevel, &config.Log.Level)

	if v, ok := os.LookupEnv(EnvServerPort); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v, ok := os.LookupEnv(EnvIngestRateLimit); ok {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			config.Ingest.RateLimit = rate
		}
	}
}
