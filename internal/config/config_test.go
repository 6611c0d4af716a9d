package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKMASTER_CONFIG", "PORT", "DATABASE_TYPE", "DB_PATH", "DATABASE_URL",
		"REDIS_URL", "STORAGE_KEY", "LEADERBOARD_SIZE", "RATE_LIMIT", "DEBUG", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	content := `
server_port = "9090"
database_type = "redis"
redis_url = "redis://localhost:6379/0"
leaderboard_size = 5
debug = true
`
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte(content), 0o644))
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "redis", cfg.DatabaseType)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5, cfg.LeaderboardSize)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.UsesSQL())
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKMASTER_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non numeric leaderboard size", key: "LEADERBOARD_SIZE", value: "ten"},
		{name: "zero leaderboard size", key: "LEADERBOARD_SIZE", value: "0"},
		{name: "bad debug flag", key: "DEBUG", value: "maybe"},
		{name: "unknown database", key: "DATABASE_TYPE", value: "oracle"},
		{name: "postgres without url", key: "DATABASE_TYPE", value: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
