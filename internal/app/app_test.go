package app

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmaster/internal/config"
)

func TestNewLogger(t *testing.T) {
	cfg := config.Defaults()
	logger := NewLogger(cfg)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	cfg.Debug = true
	cfg.LogFormat = "json"
	logger = NewLogger(cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestOpenMemoryApp(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.DatabaseType = "memory"

	a, err := Open(ctx, cfg, NewLogger(cfg))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Engine.Open(ctx)
	require.NoError(t, err)
	_, err = a.Engine.StartSession(ctx, "ada")
	require.NoError(t, err)

	snap, _, err := a.Repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", snap.User.Name)
	assert.NotNil(t, a.Backup())
}
