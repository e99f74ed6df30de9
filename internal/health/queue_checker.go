package health

import (
	"context"
	"time"
)

// QueueLen 返回队列当前长度
type QueueLen func(ctx context.Context) (int64, error)

// QueueChecker 出站请求队列积压检查器
type QueueChecker struct {
	name     string
	length   QueueLen
	capacity int64
}

// NewQueueChecker capacity 为队列容量，<=0 时只检查可读性
func NewQueueChecker(name string, length QueueLen, capacity int64) *QueueChecker {
	return &QueueChecker{name: name, length: length, capacity: capacity}
}

func (c *QueueChecker) Name() string {
	return c.name
}

// Check 积压超过容量 80% 时降级，达到容量时不健康
func (c *QueueChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	n, err := c.length(ctx)
	if err != nil {
		return failed(start, "queue length", err)
	}

	r := ok(start, map[string]any{"pending": n, "capacity": c.capacity})
	if c.capacity > 0 {
		if n*10 > c.capacity*8 {
			r.worsen(StatusDegraded, "queue backlog")
		}
		if n >= c.capacity {
			r.worsen(StatusUnhealthy, "queue full")
		}
	}
	return r
}
