package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/leavalz/Natural-Triade-Shop/internal/config"
	"github.com/leavalz/Natural-Triade-Shop/internal/db"
	"github.com/leavalz/Natural-Triade-Shop/internal/kv"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
	"github.com/leavalz/Natural-Triade-Shop/internal/redis"
)

// Infra holds the durable state backend and whatever connection backs it.
type Infra struct {
	State kv.Store
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	switch cfg.StateBackend {
	case config.BackendMemory:
		logger.Warn("client state is kept in memory and will not survive a restart", nil)
		return &Infra{State: kv.NewMemoryStore()}, nil

	case config.BackendFile:
		store, err := kv.NewFileStore(cfg.StateFile)
		if err != nil {
			return nil, err
		}
		logger.Info("file state ready", map[string]any{
			"path": cfg.StateFile,
		})
		return &Infra{State: store}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("redis ready", map[string]any{
			"addr": cfg.RedisAddr,
		})
		return &Infra{State: kv.NewRedisStore(client.Client), Redis: client}, nil

	case config.BackendPostgres:
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("database ready", nil)
		return &Infra{State: kv.NewPostgresStore(database), DB: database}, nil
	}

	return nil, fmt.Errorf("app: unknown state backend %q", cfg.StateBackend)
}

func (i *Infra) Close() error {
	var errs []error
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	return errors.Join(errs...)
}
