package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"taskmaster/internal/config"
	"taskmaster/internal/database"
)

// OpenStore returns the KV store selected by cfg. For SQL databases the schema
// is migrated first. The returned close function releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config) (KVStore, func() error, error) {
	switch strings.ToLower(cfg.DatabaseType) {
	case "memory":
		return NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return NewRedisStore(client, ""), client.Close, nil
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewSQLStore(db), db.Close, nil
}
