package app

import (
	"context"

	"go.uber.org/zap"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage"
	"github.com/tasifacuj/mission-control/internal/storage/models"
	redisstorage "github.com/tasifacuj/mission-control/internal/storage/redis"
)

// NewOutboundQueue 在基础队列外包一层入队限流
func NewOutboundQueue(base outbound.Queue, cfg cfgpkg.OutboundConfig) *outbound.LimitedQueue {
	return outbound.NewLimitedQueue(base, outbound.NewRateLimiter(cfg.RateLimit, cfg.Burst))
}

// NewDispatcher 创建出站消费者；repo 非 nil 时记录请求日志，Redis 队列记录丢弃的请求
func NewDispatcher(
	queue outbound.Queue,
	tx outbound.Transmitter,
	cfg cfgpkg.OutboundConfig,
	repo storage.TelemetryRepo,
	redisQueue *redisstorage.RequestQueue,
	log *zap.Logger,
) *outbound.Dispatcher {
	d := outbound.NewDispatcher(queue, tx, cfg.Interval, cfg.Batch, log)
	if repo == nil && redisQueue == nil {
		return d
	}
	d.SetCompletionHook(func(ctx context.Context, req *outbound.Request, cause error) {
		if cause != nil && redisQueue != nil {
			if err := redisQueue.MarkDropped(ctx, req, cause.Error()); err != nil {
				log.Warn("mark dropped failed", zap.String("req_id", req.ID), zap.Error(err))
			}
		}
		if repo == nil {
			return
		}
		status := models.RequestStatusSent
		if cause != nil {
			status = models.RequestStatusDropped
		}
		entry := &models.RequestLog{
			RequestID:  req.ID,
			MessageID:  uint16(req.MessageID),
			Name:       req.Name,
			Priority:   req.Priority,
			PayloadLen: len(req.Payload),
			Status:     status,
			Retries:    req.Retries,
		}
		if err := repo.AppendRequestLog(ctx, entry); err != nil {
			log.Warn("append request log failed", zap.String("req_id", req.ID), zap.Error(err))
		}
	})
	return d
}
