package app

import (
	"net/http"

	"go.uber.org/zap"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/httpserver"
)

// NewHTTPServer 根据配置创建 HTTP 服务器；未启用指标时不暴露指标路由
func NewHTTPServer(cfg *cfgpkg.Config, metricsHandler http.Handler, readyFn func() bool, log *zap.Logger) *httpserver.Server {
	opts := httpserver.Options{
		MetricsPath: cfg.Metrics.Path,
		Ready:       readyFn,
		Logger:      log,
	}
	if cfg.Metrics.Enable {
		opts.Metrics = metricsHandler
	}
	return httpserver.New(cfg.HTTP, opts)
}
