package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog    CatalogConfig    `toml:"catalog"`
	Lookup     LookupConfig     `toml:"lookup"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
	Snapshot   SnapshotConfig   `toml:"snapshot"`
	Database   DatabaseConfig   `toml:"database"`
}

// CatalogConfig contains settings for the upstream catalog provider.
type CatalogConfig struct {
	BaseURL    string `toml:"base_url"`
	BasicToken string `toml:"basic_token"`
	UserAgent  string `toml:"user_agent"`
	Locale     string `toml:"locale"`
	PageSize   int    `toml:"page_size"`
}

// LookupConfig contains settings for the secondary metadata provider.
type LookupConfig struct {
	URL string `toml:"url"`
}

// EnrichmentConfig contains batching and retry settings for metadata lookups.
type EnrichmentConfig struct {
	BatchSize    int    `toml:"batch_size"`
	BatchPauseMS int    `toml:"batch_pause_ms"`
	CooldownMS   int    `toml:"cooldown_ms"`
	MaxRetries   int    `toml:"max_retries"`
	JoinStrategy string `toml:"join_strategy"` // "title" or "id"
}

// BatchPause returns the inter-batch pause as a [time.Duration].
func (e EnrichmentConfig) BatchPause() time.Duration {
	return time.Duration(e.BatchPauseMS) * time.Millisecond
}

// Cooldown returns the rate-limit cooldown as a [time.Duration].
func (e EnrichmentConfig) Cooldown() time.Duration {
	return time.Duration(e.CooldownMS) * time.Millisecond
}

// SnapshotConfig contains paths for the persisted catalog snapshot and change logs.
type SnapshotConfig struct {
	Path   string `toml:"path"`
	LogDir string `toml:"log_dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
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
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
