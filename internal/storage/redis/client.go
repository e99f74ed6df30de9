package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
)

var errDisabled = errors.New("redis: disabled in config")

// Client 快照存储与请求队列共用的连接
type Client struct {
	*redis.Client
	addr string
}

// Probe 一次 PING 的结果与连接池快照
type Probe struct {
	RTT   time.Duration
	Pool  redis.PoolStats
	Error error
}

// Connect 建立连接并在 DialTimeout 内完成首次 PING
func Connect(ctx context.Context, cfg cfgpkg.RedisConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, errDisabled
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	c := &Client{Client: rdb, addr: cfg.Addr}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if p := c.Probe(pingCtx); p.Error != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, p.Error)
	}
	return c, nil
}

// Addr 连接地址
func (c *Client) Addr() string {
	return c.addr
}

// Probe PING 并采集连接池统计
func (c *Client) Probe(ctx context.Context) Probe {
	start := time.Now()
	err := c.Ping(ctx).Err()
	p := Probe{RTT: time.Since(start), Error: err}
	if s := c.PoolStats(); s != nil {
		p.Pool = *s
	}
	return p
}

func (c *Client) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
