package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/anidex/internal/services"
	"github.com/desertthunder/anidex/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	catalog := services.NewCrunchyrollService(config.Catalog, nil)
	lookup := services.NewAnilistService(config.Lookup.URL, nil)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Lookup:  lookup,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "anidex",
		Usage:    "Sync and enrich a streaming catalog snapshot",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
