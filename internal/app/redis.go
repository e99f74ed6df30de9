package app

import (
	"context"

	"go.uber.org/zap"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/health"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage"
	redisstorage "github.com/tasifacuj/mission-control/internal/storage/redis"
)

// NewRedisClient 创建Redis客户端；未启用时返回 (nil, nil)
func NewRedisClient(ctx context.Context, cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, using in-memory stores")
		return nil, nil
	}

	client, err := redisstorage.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))
	return client, nil
}

// NewSnapshotStore 有 Redis 时共享快照，否则使用进程内存储
func NewSnapshotStore(client *redisstorage.Client, cfg cfgpkg.RedisConfig) storage.SnapshotStore {
	if client == nil {
		return storage.NewMemorySnapshotStore()
	}
	return redisstorage.NewSnapshotStore(client, cfg.SnapshotTTL)
}

// NewBaseQueue 有 Redis 时使用 Sorted Set 队列，否则使用有界内存队列
func NewBaseQueue(client *redisstorage.Client, cfg cfgpkg.OutboundConfig) outbound.Queue {
	if client == nil {
		return outbound.NewMemoryQueue(cfg.QueueSize)
	}
	return redisstorage.NewRequestQueue(client)
}

// AddRedisChecker 添加Redis检查器到聚合器
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
	}
}
