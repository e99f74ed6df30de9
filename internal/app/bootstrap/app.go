package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tasifacuj/mission-control/internal/api"
	"github.com/tasifacuj/mission-control/internal/api/middleware"
	"github.com/tasifacuj/mission-control/internal/app"
	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/health"
	"github.com/tasifacuj/mission-control/internal/metrics"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage"
	"github.com/tasifacuj/mission-control/internal/storage/gormrepo"
	redisstorage "github.com/tasifacuj/mission-control/internal/storage/redis"
	"github.com/tasifacuj/mission-control/internal/telemetry"
)

// Version 构建版本
var Version = "dev"

// Run 统一启动流程：存储 → 出站队列 → 路由器 → HTTP；收到 SIGINT/SIGTERM 后按相反顺序关闭
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting mission control", zap.String("version", Version), zap.String("env", cfg.App.Env))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ========== 阶段1: 基础组件 ==========
	reg, appm := app.NewMetrics()
	ready := health.New()

	// ========== 阶段2: 存储（均为可选）==========
	db, err := app.ConnectDB(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	var repo *gormrepo.Repository
	if db != nil {
		defer db.Close()
		repo = gormrepo.New(db.Gorm)
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Error("redis initialization failed", zap.Error(err))
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	healthAgg := app.NewHealthAggregator(db)
	app.AddRedisChecker(healthAgg, redisClient)

	// ========== 阶段3: 出站队列与消费者 ==========
	base := app.NewBaseQueue(redisClient, cfg.Outbound)
	queue := app.NewOutboundQueue(base, cfg.Outbound)
	app.AddQueueChecker(healthAgg, base, cfg.Outbound.QueueSize)

	redisQueue, _ := base.(*redisstorage.RequestQueue)
	var logRepo storage.TelemetryRepo
	if repo != nil {
		logRepo = repo
	}
	dispatcher := app.NewDispatcher(queue, outbound.LogTransmitter(log), cfg.Outbound, logRepo, redisQueue, log)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	if err := app.RegisterDispatcherMetrics(reg, dispatcher); err != nil {
		log.Warn("register dispatcher metrics failed", zap.Error(err))
	}

	// ========== 阶段4: 路由器 ==========
	opts := telemetry.Options{
		Queue:      queue,
		Snapshots:  app.NewSnapshotStore(redisClient, cfg.Redis),
		Metrics:    appm,
		MaxRetries: cfg.Outbound.MaxRetries,
	}
	if repo != nil && cfg.MSP.RecordSamples {
		opts.Recorder = repo
	}
	router, err := app.NewRouter(cfg.MSP, opts, log)
	if err != nil {
		return err
	}
	defer router.Close()
	ready.Set("router", true)

	if repo != nil && cfg.Database.Retention > 0 {
		go app.NewSamplePruner(repo, cfg.Database.Retention, log).Start(ctx)
	}

	// ========== 阶段5: HTTP ==========
	httpSrv := app.NewHTTPServer(cfg, metrics.Handler(reg), func() bool {
		return ready.Ready() && healthAgg.Ready(context.Background())
	}, log)
	var history api.SampleHistory
	if repo != nil {
		history = repo
	}
	handler := api.NewTelemetryHandler(router, dispatcher, history, appm, log)
	httpSrv.Register(func(r *gin.Engine) {
		api.RegisterTelemetryRoutes(r, handler, api.RouteConfig{
			Auth: middleware.AuthConfig{
				APIKeys: cfg.API.Auth.APIKeys,
				Enabled: cfg.API.Auth.Enabled,
			},
			InternalKeys: cfg.API.Auth.InternalKeys,
			IngestRate:   cfg.API.IngestRate,
		}, log)
		app.RegisterHealthRoutes(r, healthAgg)
	})

	if err := httpSrv.Listen(); err != nil {
		log.Error("http listen failed", zap.String("addr", cfg.HTTP.Addr), zap.Error(err))
		return err
	}
	go func() {
		if err := httpSrv.Serve(); err != nil {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()
	ready.Set("http", true)
	log.Info("http server started", zap.String("addr", httpSrv.Addr()))

	// ========== 信号处理，优雅关闭 ==========
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	ready.Set("http", false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown error", zap.Error(err))
	}
	log.Info("mission control stopped")
	return nil
}
