package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/zilstream/exchange-subgraph/internal/config"
	"github.com/zilstream/exchange-subgraph/internal/database"
	"github.com/zilstream/exchange-subgraph/internal/ingest"
	"github.com/zilstream/exchange-subgraph/internal/modules/core"
	"github.com/zilstream/exchange-subgraph/internal/modules/exchange"
)

func main() {
	// Parse command-line flags
	var configPath string
	var backfillFrom, backfillTo uint64
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.Uint64Var(&backfillFrom, "backfill-from", 0, "Replay stored events from this block (requires -backfill-to)")
	flag.Uint64Var(&backfillTo, "backfill-to", 0, "Replay stored events up to this block")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logger
	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", "0.1.0").
		Str("config", configPath).
		Msg("Starting exchange subgraph")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply migrations before anything touches the schema
	if err := database.RunMigrations(ctx, &cfg.Database, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	module, err := exchange.NewModule(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create exchange module")
	}

	registry := core.NewModuleRegistry(db, logger)
	if err := registry.RegisterModule(module); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register exchange module")
	}
	if err := registry.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start module registry")
	}
	defer registry.Stop()

	// Backfill mode replays already-ingested logs and exits.
	if backfillTo > 0 {
		if err := module.Backfill(ctx, backfillFrom, backfillTo); err != nil {
			logger.Fatal().Err(err).Msg("Backfill failed")
		}
		logger.Info().Msg("Backfill complete")
		return
	}

	// Default the ingest start to the module's manifest start block.
	if cfg.Chain.StartBlock == 0 {
		cfg.Chain.StartBlock = module.GetStartBlock()
	}

	ingester, err := ingest.New(cfg, db, registry, module.GetEventFilters(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create ingester")
	}
	defer ingester.Close()

	// Shut down on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := ingester.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Ingester failed")
	}

	logger.Info().Msg("Shutdown complete")
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set time format
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Parse log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	// Configure output format
	var logger zerolog.Logger
	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05.000",
		}
		logger = zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
	} else {
		logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Caller().Logger()
	}

	return logger
}
