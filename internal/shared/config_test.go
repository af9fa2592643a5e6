package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tu "github.com/desertthunder/anidex/internal/testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "anidex.db" {
			t.Errorf("expected database path anidex.db, got %s", config.Database.Path)
		}

		if config.Catalog.PageSize != 2000 {
			t.Errorf("expected catalog page size 2000, got %d", config.Catalog.PageSize)
		}

		if config.Lookup.URL != "https://graphql.anilist.co" {
			t.Errorf("expected lookup URL https://graphql.anilist.co, got %s", config.Lookup.URL)
		}

		if config.Enrichment.BatchSize != 10 {
			t.Errorf("expected batch size 10, got %d", config.Enrichment.BatchSize)
		}

		if config.Enrichment.JoinStrategy != "title" {
			t.Errorf("expected join strategy title, got %s", config.Enrichment.JoinStrategy)
		}

		if config.Snapshot.Path != "anime.json" {
			t.Errorf("expected snapshot path anime.json, got %s", config.Snapshot.Path)
		}

		if config.Snapshot.LogDir != "data_change_logs" {
			t.Errorf("expected log dir data_change_logs, got %s", config.Snapshot.LogDir)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		originalDir := tu.MustGetwd(t)
		tu.MustChdir(t, tmpDir)
		defer tu.MustChdir(t, originalDir)

		configPath := "config.toml"

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[catalog]
base_url = "https://example.test"
basic_token = "dGVzdDo="
locale = "en-GB"
page_size = 500

[lookup]
url = "https://lookup.example.test"

[enrichment]
batch_size = 5
batch_pause_ms = 100
cooldown_ms = 2000
max_retries = 2
join_strategy = "id"

[snapshot]
path = "/custom/anime.json"
log_dir = "/custom/logs"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Catalog.BaseURL != "https://example.test" {
			t.Errorf("expected catalog base URL https://example.test, got %s", config.Catalog.BaseURL)
		}

		if config.Enrichment.BatchSize != 5 {
			t.Errorf("expected batch size 5, got %d", config.Enrichment.BatchSize)
		}

		if config.Enrichment.JoinStrategy != "id" {
			t.Errorf("expected join strategy id, got %s", config.Enrichment.JoinStrategy)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("Duration helpers", func(t *testing.T) {
		cfg := EnrichmentConfig{BatchPauseMS: 1500, CooldownMS: 60000}

		if cfg.BatchPause() != 1500*time.Millisecond {
			t.Errorf("expected 1.5s batch pause, got %s", cfg.BatchPause())
		}
		if cfg.Cooldown() != time.Minute {
			t.Errorf("expected 1m cooldown, got %s", cfg.Cooldown())
		}
	})
}
