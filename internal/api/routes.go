package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tasifacuj/mission-control/internal/api/middleware"
)

// RouteConfig 认证与限流
type RouteConfig struct {
	Auth         middleware.AuthConfig
	InternalKeys []string
	// IngestRate 注入接口每秒请求数，0 不限
	IngestRate float64
}

// RegisterTelemetryRoutes 注册遥测路由
func RegisterTelemetryRoutes(r *gin.Engine, h *TelemetryHandler, cfg RouteConfig, logger *zap.Logger) {
	if r == nil || h == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api := r.Group("/api")
	api.Use(middleware.CORS())
	if cfg.Auth.Enabled {
		api.Use(middleware.APIKeyAuth(cfg.Auth, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(cfg.Auth.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	api.GET("/messages", h.ListMessages)
	api.GET("/telemetry", h.ListTelemetry)
	api.GET("/telemetry/:name", h.GetTelemetry)
	api.GET("/history", h.History)

	api.GET("/subscriptions", h.ListSubscriptions)
	api.POST("/subscriptions", h.CreateSubscription)
	api.DELETE("/subscriptions/:name", h.DeleteSubscription)
	api.PUT("/subscriptions/:name/rate", h.SetRate)
	api.POST("/subscriptions/:name/request", h.RequestOnce)

	api.POST("/rc", h.SendRawRc)
	api.GET("/outbound/stats", h.OutboundStats)

	// 载荷注入：认证启用时额外要求内部 key
	ingest := []gin.HandlerFunc{middleware.RateLimit(cfg.IngestRate, int(cfg.IngestRate)+1)}
	if cfg.Auth.Enabled {
		ingest = append(ingest, middleware.InternalAuth(cfg.InternalKeys, logger))
	}
	api.POST("/ingest", append(ingest, h.Ingest)...)

	logger.Info("telemetry routes registered", zap.Int("endpoints", 12))
}
