package app

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SamplePruner 的存储依赖
type samplePruneRepo interface {
	PruneSamples(ctx context.Context, before time.Time) (int64, error)
}

// SamplePruner 定期删除超过保留期的遥测样本
type SamplePruner struct {
	repo          samplePruneRepo
	retention     time.Duration
	checkInterval time.Duration
	logger        *zap.Logger

	// 统计
	statsPruned atomic.Int64
}

// NewSamplePruner 检查间隔取保留期的 1/24，最短 1 分钟、最长 1 小时
func NewSamplePruner(repo samplePruneRepo, retention time.Duration, logger *zap.Logger) *SamplePruner {
	interval := min(max(retention/24, time.Minute), time.Hour)
	return &SamplePruner{
		repo:          repo,
		retention:     retention,
		checkInterval: interval,
		logger:        logger,
	}
}

// Start 阻塞运行直到 ctx 取消
func (p *SamplePruner) Start(ctx context.Context) {
	p.logger.Info("sample pruner started",
		zap.Duration("retention", p.retention),
		zap.Duration("check_interval", p.checkInterval))

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("sample pruner stopped",
				zap.Int64("total_pruned", p.statsPruned.Load()))
			return
		case <-ticker.C:
			p.prune(ctx, time.Now())
		}
	}
}

func (p *SamplePruner) prune(ctx context.Context, now time.Time) {
	n, err := p.repo.PruneSamples(ctx, now.Add(-p.retention))
	if err != nil {
		p.logger.Error("prune samples failed", zap.Error(err))
		return
	}
	if n > 0 {
		p.statsPruned.Add(n)
		p.logger.Info("pruned telemetry samples",
			zap.Int64("pruned", n),
			zap.Int64("total_pruned", p.statsPruned.Load()))
	}
}

// Stats 获取统计信息
func (p *SamplePruner) Stats() map[string]int64 {
	return map[string]int64{"total_pruned": p.statsPruned.Load()}
}
