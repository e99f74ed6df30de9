package outbound

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

const (
	defaultRatePerSec = 200
	burstFactor       = 2
)

// RateLimiter 令牌桶；统计放行与拒绝次数
type RateLimiter struct {
	bucket   *rate.Limiter
	perSec   int
	burst    int
	allowed  atomic.Int64
	rejected atomic.Int64
}

// NewRateLimiter perSec<=0 取 200；burst<=0 取 perSec 的两倍
func NewRateLimiter(perSec, burst int) *RateLimiter {
	if perSec <= 0 {
		perSec = defaultRatePerSec
	}
	if burst <= 0 {
		burst = perSec * burstFactor
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(perSec), burst),
		perSec: perSec,
		burst:  burst,
	}
}

// Allow 非阻塞取一个令牌
func (l *RateLimiter) Allow() bool {
	if !l.bucket.Allow() {
		l.rejected.Add(1)
		return false
	}
	l.allowed.Add(1)
	return true
}

// Tokens 桶内剩余令牌数
func (l *RateLimiter) Tokens() float64 {
	return l.bucket.Tokens()
}

func (l *RateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond: l.perSec,
		Burst:         l.burst,
		AllowedTotal:  l.allowed.Load(),
		RejectedTotal: l.rejected.Load(),
	}
}

// RateLimiterStats 限流器配置与计数
type RateLimiterStats struct {
	RatePerSecond int   `json:"rate_per_second"`
	Burst         int   `json:"burst"`
	AllowedTotal  int64 `json:"allowed_total"`
	RejectedTotal int64 `json:"rejected_total"`
	ExemptTotal   int64 `json:"exempt_total"`
}

// LimitedQueue 入队前限流的队列
//
// PriorityEmergency（RC 覆盖）与重试入队（Retries > 0）不消耗令牌；
// 重试的请求在首次入队时已计入速率。
type LimitedQueue struct {
	Queue
	limiter *RateLimiter
	exempt  atomic.Int64
}

// NewLimitedQueue 超限的请求返回 ErrRateLimited
func NewLimitedQueue(q Queue, limiter *RateLimiter) *LimitedQueue {
	return &LimitedQueue{Queue: q, limiter: limiter}
}

func (q *LimitedQueue) Enqueue(ctx context.Context, req *Request) error {
	switch {
	case req.Priority == PriorityEmergency, req.Retries > 0:
		q.exempt.Add(1)
	case !q.limiter.Allow():
		return ErrRateLimited
	}
	return q.Queue.Enqueue(ctx, req)
}

// Stats 限流统计，含免限流的入队次数
func (q *LimitedQueue) Stats() RateLimiterStats {
	s := q.limiter.Stats()
	s.ExemptTotal = q.exempt.Load()
	return s
}
