package app

import (
	"context"
	"fmt"

	"github.com/InQaaaaGit/link_admin.git/internal/config"
	"github.com/InQaaaaGit/link_admin.git/internal/storage"
	"go.uber.org/zap"
)

// NewStorage создает хранилище пользователей по конфигурации
func NewStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.UserStorage, error) {
	storageType := cfg.StorageType()
	logger.Info("Initializing storage", zap.String("type", string(storageType)))

	switch storageType {
	case config.StorageMongo:
		ms, err := storage.NewMongoStorage(ctx, storage.MongoOptions{
			URI:                    cfg.DSN(),
			Database:               cfg.DatabaseName,
			Collection:             cfg.UsersCollection,
			ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
			ConnectTimeout:         cfg.MongoConnectTimeout,
			SocketTimeout:          cfg.MongoSocketTimeout,
			HeartbeatInterval:      cfg.MongoHeartbeatInterval,
		}, logger)
		if err != nil {
			return nil, err
		}
		return ms, nil
	case config.StoragePostgres:
		ps, err := storage.NewPostgresStorage(ctx, cfg.DSN(), cfg.UsersCollection, logger)
		if err != nil {
			return nil, err
		}
		return ps, nil
	case config.StorageFile:
		fs, err := storage.NewFileStorage(cfg.FileStoragePath, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.StorageMemory:
		return storage.NewMemoryStorage(logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", storageType)
	}
}
