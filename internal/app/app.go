package app

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"taskmaster/internal/config"
	"taskmaster/internal/repository"
	"taskmaster/internal/service"
)

// NewLogger builds the process logger from configuration
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// App bundles the persistence stack and the engine built on it
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Codec  *repository.Codec
	Repo   *repository.StateRepository
	Engine *service.Engine

	closeStore func() error
}

// Open connects to the configured store and builds the engine. The engine is
// not opened; callers that need the state call Engine.Open.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	store, closeStore, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.DatabaseType, err)
	}
	logger.WithField("type", cfg.DatabaseType).Debug("Store connection established")

	codec := repository.NewCodec(service.NewTaskID, cfg.LeaderboardSize)
	repo := repository.NewStateRepository(store, cfg.StorageKey, codec)
	engine := service.NewEngine(repo, service.EngineOptions{
		Logger:          logger,
		LeaderboardSize: cfg.LeaderboardSize,
	})

	return &App{
		Config:     cfg,
		Log:        logger,
		Codec:      codec,
		Repo:       repo,
		Engine:     engine,
		closeStore: closeStore,
	}, nil
}

// Backup returns a backup service over the same store
func (a *App) Backup() *service.BackupService {
	return service.NewBackupService(a.Repo, a.Codec, a.Config.StorageKey, service.RealClock{}, a.Log)
}

// Close releases the store connection
func (a *App) Close() error {
	return a.closeStore()
}
