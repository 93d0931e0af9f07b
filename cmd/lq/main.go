// Package main is the entry point for the lq command.
package main

import (
	"sync"

	"github.com/imryche/litequery/internal/adapters/driven/config/file"
	"github.com/imryche/litequery/internal/adapters/driven/storage/sqlite"
	"github.com/imryche/litequery/internal/adapters/driving/cli"
	"github.com/imryche/litequery/internal/core/ports/driving"
	"github.com/imryche/litequery/internal/core/services"
	"github.com/imryche/litequery/internal/logger"
)

func main() {
	cli.SetBootstrap(bootstrap)
	cli.SetInitializer(func(configPath, databasePath string) (string, error) {
		return file.Init("", configPath, databasePath)
	})
	cli.Execute()
}

// bootstrap resolves the configuration and wires the SQLite adapters into
// the core services.
func bootstrap(opts cli.BootstrapOptions) (*cli.Services, error) {
	settings, err := file.Resolve(file.Options{
		DatabasePath: opts.DatabasePath,
		ConfigPath:   opts.ConfigPath,
	})
	if err != nil {
		return nil, err
	}

	if settings.LogLevel != "" {
		level, err := logger.ParseLevel(settings.LogLevel)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(level)
	}
	if settings.Verbose || opts.Verbose {
		logger.SetVerbose(true)
	}
	logger.Debug("config: %s", settings.ConfigFile)
	logger.Debug("database: %s", settings.DatabasePath)

	db, err := sqlite.Open(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	cfg := settings.Config
	engine := sync.OnceValues(func() (driving.Engine, error) {
		queries, err := services.ParseQueries(cfg.QueriesPath)
		if err != nil {
			return nil, err
		}
		return services.NewQueryEngine(db, queries)
	})

	return &cli.Services{
		Config:   cfg,
		Migrator: services.NewMigrationService(sqlite.NewMigrationStore(db), cfg),
		Engine:   engine,
		Close:    db.Close,
	}, nil
}
