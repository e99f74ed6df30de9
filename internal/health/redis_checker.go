package health

import (
	"context"
	"time"

	redisstorage "github.com/tasifacuj/mission-control/internal/storage/redis"
)

// Prober Redis 探测（*redisstorage.Client）
type Prober interface {
	Probe(ctx context.Context) redisstorage.Probe
}

// RedisChecker 快照与请求队列所在的 Redis
type RedisChecker struct {
	client Prober
	// SlowRTT PING 超过该时长降级
	SlowRTT time.Duration
}

func NewRedisChecker(client Prober) *RedisChecker {
	return &RedisChecker{client: client, SlowRTT: 100 * time.Millisecond}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	p := c.client.Probe(ctx)
	if p.Error != nil {
		return failed(start, "ping", p.Error)
	}

	var busy float64
	if p.Pool.TotalConns > 0 {
		busy = float64(p.Pool.TotalConns-p.Pool.IdleConns) / float64(p.Pool.TotalConns)
	}
	r := ok(start, map[string]any{
		"rtt":         p.RTT.String(),
		"total_conns": p.Pool.TotalConns,
		"idle_conns":  p.Pool.IdleConns,
		"timeouts":    p.Pool.Timeouts,
		"utilization": percent(busy),
	})
	if c.SlowRTT > 0 && p.RTT > c.SlowRTT {
		r.worsen(StatusDegraded, "slow ping")
	}
	if busy > 0.9 {
		r.worsen(StatusDegraded, "pool near limit")
	}
	return r
}
