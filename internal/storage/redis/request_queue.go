package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tasifacuj/mission-control/internal/outbound"
)

const (
	// Redis Key前缀
	requestQueueKey = "mspt:requests"      // 待发送请求（Sorted Set，按优先级+时间排序）
	requestDeadKey  = "mspt:requests:dead" // 丢弃的请求（List）
	deadListMax     = 1000
)

// RequestQueue 基于 Redis Sorted Set 的出站请求队列
type RequestQueue struct {
	client *Client
	key    string
}

var _ outbound.Queue = (*RequestQueue)(nil)

// NewRequestQueue 创建Redis请求队列
func NewRequestQueue(client *Client) *RequestQueue {
	return &RequestQueue{client: client, key: requestQueueKey}
}

// score 优先级*1e13 + 毫秒时间戳，保证优先级小的排前面；同一毫秒内顺序不保证
func score(req *outbound.Request) float64 {
	return float64(req.Priority)*1e13 + float64(req.CreatedAt.UnixMilli())
}

// Enqueue 入队
func (q *RequestQueue) Enqueue(ctx context.Context, req *outbound.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  score(req),
		Member: req.ID + ":" + string(data),
	}).Err()
}

// Dequeue 出队（ZPOPMIN 原子操作，Redis 5.0+）；队列为空时返回 (nil, nil)
func (q *RequestQueue) Dequeue(ctx context.Context) (*outbound.Request, error) {
	result, err := q.client.ZPopMin(ctx, q.key, 1).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	member, ok := result[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected member type %T", result[0].Member)
	}
	req, err := parseRequest(member)
	if err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

// Len 待发送请求数量
func (q *RequestQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}

// MarkDropped 记录被丢弃的请求，保留最近 deadListMax 条
func (q *RequestQueue) MarkDropped(ctx context.Context, req *outbound.Request, reason string) error {
	data, err := json.Marshal(map[string]any{
		"request":    req,
		"reason":     reason,
		"dropped_at": time.Now(),
	})
	if err != nil {
		return err
	}
	pipe := q.client.Pipeline()
	pipe.LPush(ctx, requestDeadKey, data)
	pipe.LTrim(ctx, requestDeadKey, 0, deadListMax-1)
	_, err = pipe.Exec(ctx)
	return err
}

// DeadCount 丢弃列表长度
func (q *RequestQueue) DeadCount(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, requestDeadKey).Result()
}

// Stats 获取队列统计信息
func (q *RequestQueue) Stats(ctx context.Context) (map[string]int64, error) {
	pending, err := q.Len(ctx)
	if err != nil {
		return nil, err
	}
	dead, err := q.DeadCount(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int64{"pending": pending, "dead": dead}, nil
}

// parseRequest 格式: "ID:JSON"
func parseRequest(member string) (*outbound.Request, error) {
	_, data, ok := strings.Cut(member, ":")
	if !ok {
		return nil, fmt.Errorf("invalid member format")
	}
	var req outbound.Request
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, err
	}
	return &req, nil
}
