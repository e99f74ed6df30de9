package outbound

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Transmitter 将请求交给外部传输层（分帧、校验、串口写入）
type Transmitter interface {
	Transmit(ctx context.Context, req *Request) error
}

// TransmitFunc 函数形式的 Transmitter
type TransmitFunc func(ctx context.Context, req *Request) error

func (f TransmitFunc) Transmit(ctx context.Context, req *Request) error {
	return f(ctx, req)
}

// LogTransmitter 仅记录请求的 Transmitter，没有接入传输层时使用
func LogTransmitter(logger *zap.Logger) Transmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return TransmitFunc(func(_ context.Context, req *Request) error {
		logger.Debug("outbound request",
			zap.String("req_id", req.ID),
			zap.String("message", req.Name),
			zap.Int("priority", req.Priority),
			zap.String("payload_hex", hex.EncodeToString(req.Payload)))
		return nil
	})
}

// ErrMaxRetries 重试次数用尽
var ErrMaxRetries = errors.New("outbound: max retries exceeded")

// CompletionHook 请求最终发送成功（err 为 nil）或被丢弃时调用；err 为丢弃原因
type CompletionHook func(ctx context.Context, req *Request, err error)

// Dispatcher 请求队列消费者：按节拍出队并交给 Transmitter，失败时重试
type Dispatcher struct {
	queue    Queue
	tx       Transmitter
	interval time.Duration
	batch    int
	logger   *zap.Logger
	hook     CompletionHook

	mu      sync.Mutex
	running bool
	stopC   chan struct{}
	done    chan struct{}

	// 统计
	sent    atomic.Int64
	failed  atomic.Int64
	retried atomic.Int64
	dropped atomic.Int64
}

// NewDispatcher interval<=0 时默认 10ms，batch<=0 时默认 16
func NewDispatcher(queue Queue, tx Transmitter, interval time.Duration, batch int, logger *zap.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	if batch <= 0 {
		batch = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: queue, tx: tx, interval: interval, batch: batch, logger: logger}
}

// SetCompletionHook 需在 Start 之前调用
func (d *Dispatcher) SetCompletionHook(hook CompletionHook) {
	d.hook = hook
}

func (d *Dispatcher) complete(ctx context.Context, req *Request, err error) {
	if d.hook != nil {
		d.hook(ctx, req, err)
	}
}

// Start 在后台运行；ctx 取消或 Stop 时退出。ctx 取消后可以再次 Start
func (d *Dispatcher) Start(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runningLocked() {
		return false
	}
	d.running = true
	d.stopC = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(ctx, d.stopC, d.done)
	d.logger.Info("outbound dispatcher started", zap.Duration("interval", d.interval))
	return true
}

// Stop 停止并等待后台循环退出
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	close(d.stopC)
	<-d.done
	d.running = false
	d.logger.Info("outbound dispatcher stopped")
}

// Running 后台循环是否在运行
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runningLocked()
}

// runningLocked 循环因 ctx 取消自行退出时 done 已关闭
func (d *Dispatcher) runningLocked() bool {
	if !d.running {
		return false
	}
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

func (d *Dispatcher) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			for i := 0; i < d.batch; i++ {
				if !d.processOne(ctx) {
					break
				}
			}
		}
	}
}

// processOne 处理一条请求；队列为空或出错时返回 false
func (d *Dispatcher) processOne(ctx context.Context) bool {
	req, err := d.queue.Dequeue(ctx)
	if err != nil {
		d.logger.Error("dequeue failed", zap.Error(err))
		return false
	}
	if req == nil {
		return false
	}

	if err := d.tx.Transmit(ctx, req); err != nil {
		d.failed.Add(1)
		d.retry(ctx, req, err)
		return true
	}
	d.sent.Add(1)
	d.complete(ctx, req, nil)
	return true
}

func (d *Dispatcher) retry(ctx context.Context, req *Request, cause error) {
	req.Retries++
	if req.Retries > req.MaxRetry {
		d.dropped.Add(1)
		d.logger.Warn("outbound request dropped",
			zap.String("req_id", req.ID),
			zap.String("message", req.Name),
			zap.Int("retries", req.Retries-1),
			zap.Error(cause))
		d.complete(ctx, req, fmt.Errorf("%w: %v", ErrMaxRetries, cause))
		return
	}
	if err := d.queue.Enqueue(ctx, req); err != nil {
		d.dropped.Add(1)
		d.logger.Warn("requeue failed",
			zap.String("req_id", req.ID),
			zap.Error(err))
		d.complete(ctx, req, fmt.Errorf("requeue after %v: %w", cause, err))
		return
	}
	d.retried.Add(1)
	d.logger.Debug("outbound request retrying",
		zap.String("req_id", req.ID),
		zap.Int("retry", req.Retries))
}

// Stats 获取统计信息
func (d *Dispatcher) Stats(ctx context.Context) DispatcherStats {
	pending, _ := d.queue.Len(ctx)
	return DispatcherStats{
		Running: d.Running(),
		Pending: pending,
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Retried: d.retried.Load(),
		Dropped: d.dropped.Load(),
	}
}

// DispatcherStats 出队统计
type DispatcherStats struct {
	Running bool  `json:"running"`
	Pending int64 `json:"pending"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Retried int64 `json:"retried"`
	Dropped int64 `json:"dropped"`
}
