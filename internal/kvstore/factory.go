// Package kvstore provides the durable key-value backends behind sgb.Store.
package kvstore

import (
	"context"
	"fmt"

	"sgb-go/internal/config"
	"sgb-go/internal/sgb"
)

// NewStoreFromConfig creates the backend named by cfg.Type and wraps it in
// a QuotaStore unless the quota is "0".
func NewStoreFromConfig(cfg config.StoreConfig, clock sgb.Clock) (sgb.Store, error) {
	backend, err := newBackend(cfg, clock)
	if err != nil {
		return nil, err
	}

	quota := cfg.Quota
	if quota == "" {
		quota = config.DefaultQuota
	}
	limit, err := ParseQuota(quota)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if limit == 0 {
		return backend, nil
	}
	return NewQuotaStore(backend, limit), nil
}

func newBackend(cfg config.StoreConfig, clock sgb.Clock) (sgb.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite store requires sqlite_path to be set")
		}
		return NewSQLiteStore(cfg.SQLitePath, clock)
	case "badger":
		if cfg.BadgerDir == "" && !cfg.BadgerInMemory {
			return nil, fmt.Errorf("badger store requires badger_dir or badger_in_memory to be set")
		}
		return NewBadgerStore(cfg.BadgerDir, cfg.BadgerInMemory)
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis store requires redis_addr to be set")
		}
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	case "s3":
		return NewS3Store(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
