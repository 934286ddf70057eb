package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/aggregator"
	"github.com/risk-signal-engine/internal/alerts"
	"github.com/risk-signal-engine/internal/api"
	"github.com/risk-signal-engine/internal/config"
	"github.com/risk-signal-engine/internal/database"
	"github.com/risk-signal-engine/internal/detector"
	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/escalation"
	"github.com/risk-signal-engine/internal/notify"
	"github.com/risk-signal-engine/internal/recorder"
	"github.com/risk-signal-engine/internal/ruleset"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event store, selected by driver.
	var store recorder.Store
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewConnection(ctx, &cfg.Storage.Postgres, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		runner, err := database.NewMigrationRunner(
			configManager.GetDatabaseURL(), cfg.Storage.Postgres.MigrationsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migration runner")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		runner.Close()

		store = recorder.NewPostgresStore(db.Pool, logger)
	case "sqlite":
		sqliteStore, err := recorder.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open sqlite store")
		}
		store = sqliteStore
	}
	defer store.Close()

	// Signal catalog: file if configured, built-in otherwise. Catalog
	// errors are fatal here, never at request time.
	provider, err := loadRuleset(cfg.Ruleset, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load ruleset")
	}

	rec := recorder.New(store, logger, cfg.Recorder.QueueSize)
	defer rec.Close()

	hub := alerts.NewHub(logger)
	alerters := []escalation.Alerter{hub}

	if cfg.Redis.Enabled {
		publisher, err := notify.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create redis publisher")
		}
		defer publisher.Close()
		alerters = append(alerters, publisher)
	}

	det := detector.New(provider)
	coordinator := escalation.New(det, rec, logger, alerters...)
	agg := aggregator.New(store, logger)

	server := api.NewServer(cfg, coordinator, agg, hub, logger)

	// SIGINT/SIGTERM stop the server; SIGHUP reloads the signal catalog
	// with an atomic swap.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				reloadRuleset(cfg.Ruleset, provider, logger)
				continue
			}
			logger.WithField("signal", sig.String()).Info("Shutdown signal received")
			cancel()
			return
		}
	}()

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"driver":  cfg.Storage.Driver,
		"ruleset": provider.Current().Version(),
	}).Info("Starting risk signal engine")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from configuration.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// loadRuleset compiles the configured catalog into a provider.
func loadRuleset(cfg domain.RulesetConfig, logger *logrus.Logger) (*ruleset.Provider, error) {
	if cfg.Path == "" {
		logger.WithField("version", ruleset.DefaultVersion).Info("Using built-in signal catalog")
		return ruleset.NewProvider(ruleset.Default()), nil
	}

	rs, err := ruleset.LoadFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"path":    cfg.Path,
		"version": rs.Version(),
		"rules":   rs.Len(),
	}).Info("Loaded signal catalog")
	return ruleset.NewProvider(rs), nil
}

// reloadRuleset swaps in a freshly compiled catalog; a bad file keeps the
// old catalog serving.
func reloadRuleset(cfg domain.RulesetConfig, provider *ruleset.Provider, logger *logrus.Logger) {
	if cfg.Path == "" {
		logger.Warn("Ruleset reload requested but no catalog file is configured")
		return
	}

	rs, err := ruleset.LoadFile(cfg.Path)
	if err != nil {
		logger.WithError(err).Error("Ruleset reload failed, keeping current catalog")
		return
	}

	provider.Swap(rs)
	logger.WithFields(logrus.Fields{
		"version": rs.Version(),
		"rules":   rs.Len(),
	}).Info("Signal catalog reloaded")
}
