package app

import (
	"fmt"

	"go.uber.org/zap"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/msp"
	"github.com/tasifacuj/mission-control/internal/telemetry"
)

// NewRouter 创建路由器并按配置注册订阅
func NewRouter(cfg cfgpkg.MSPConfig, opts telemetry.Options, log *zap.Logger) (*telemetry.Router, error) {
	fw, err := msp.ParseFirmwareVariant(cfg.Firmware)
	if err != nil {
		return nil, err
	}
	opts.Firmware = fw
	opts.Calibration = cfg.Calibration
	opts.Logger = log

	router := telemetry.NewRouter(opts)
	for _, sub := range cfg.Subscriptions {
		id, err := msp.ParseID(sub.Message)
		if err != nil {
			router.Close()
			return nil, fmt.Errorf("subscription %q: %w", sub.Message, err)
		}
		if _, err := router.SubscribeID(id, sub.RateHz); err != nil {
			router.Close()
			return nil, fmt.Errorf("subscription %q: %w", sub.Message, err)
		}
	}
	log.Info("telemetry router ready",
		zap.String("firmware", fw.String()),
		zap.Int("subscriptions", len(cfg.Subscriptions)))
	return router, nil
}
