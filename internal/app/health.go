package app

import (
	"github.com/gin-gonic/gin"

	"github.com/tasifacuj/mission-control/internal/health"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage/gormrepo"
)

// NewHealthAggregator 创建健康检查聚合器；db 为 nil 时不检查数据库
func NewHealthAggregator(db *gormrepo.DB) *health.Aggregator {
	agg := health.NewAggregator()
	if db != nil {
		agg.AddChecker(health.NewDatabaseChecker(db.SQL))
	}
	return agg
}

// AddQueueChecker 添加出站队列积压检查器
func AddQueueChecker(aggregator *health.Aggregator, queue outbound.Queue, capacity int) {
	aggregator.AddChecker(health.NewQueueChecker("outbound_queue", queue.Len, int64(capacity)))
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}
