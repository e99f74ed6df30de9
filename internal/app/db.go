package app

import (
	"context"

	"go.uber.org/zap"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/storage/gormrepo"
)

// ConnectDB 配置了 DSN 时连接数据库并迁移；未配置时返回 (nil, nil)
func ConnectDB(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*gormrepo.DB, error) {
	if cfg.DSN == "" {
		log.Info("database dsn empty, telemetry history disabled")
		return nil, nil
	}
	db, err := gormrepo.Open(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	log.Info("database ready",
		zap.String("dsn", cfgpkg.MaskDSN(cfg.DSN)),
		zap.Bool("auto_migrate", cfg.AutoMigrate))
	return db, nil
}
