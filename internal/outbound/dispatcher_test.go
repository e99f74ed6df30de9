package outbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingTransmitter struct {
	mu    sync.Mutex
	names []string
	fail  int // 前 fail 次发送失败
}

func (r *recordingTransmitter) Transmit(_ context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("link down")
	}
	r.names = append(r.names, req.Name)
	return nil
}

func (r *recordingTransmitter) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func TestDispatcherProcessOne(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)
	tx := &recordingTransmitter{}
	d := NewDispatcher(q, tx, 0, 0, zap.NewNop())

	assert.False(t, d.processOne(ctx), "空队列")

	require.NoError(t, q.Enqueue(ctx, &Request{ID: "1", Name: "MSP_STATUS", Priority: PriorityHigh}))
	require.NoError(t, q.Enqueue(ctx, &Request{ID: "2", Name: "MSP_SET_RAW_RC", Priority: PriorityEmergency}))
	assert.True(t, d.processOne(ctx))
	assert.True(t, d.processOne(ctx))
	assert.Equal(t, []string{"MSP_SET_RAW_RC", "MSP_STATUS"}, tx.sent())

	stats := d.Stats(ctx)
	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(0), stats.Pending)
}

func TestDispatcherRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("重试后成功", func(t *testing.T) {
		q := NewMemoryQueue(10)
		tx := &recordingTransmitter{fail: 1}
		d := NewDispatcher(q, tx, 0, 0, nil)
		require.NoError(t, q.Enqueue(ctx, &Request{ID: "1", Name: "MSP_RC", MaxRetry: 1}))

		assert.True(t, d.processOne(ctx))
		assert.True(t, d.processOne(ctx))
		assert.Equal(t, []string{"MSP_RC"}, tx.sent())
		stats := d.Stats(ctx)
		assert.Equal(t, int64(1), stats.Failed)
		assert.Equal(t, int64(1), stats.Retried)
		assert.Equal(t, int64(1), stats.Sent)
	})

	t.Run("超过最大重试次数丢弃", func(t *testing.T) {
		q := NewMemoryQueue(10)
		tx := &recordingTransmitter{fail: 10}
		d := NewDispatcher(q, tx, 0, 0, nil)
		require.NoError(t, q.Enqueue(ctx, &Request{ID: "1", Name: "MSP_RC", MaxRetry: 1}))

		assert.True(t, d.processOne(ctx))
		assert.True(t, d.processOne(ctx))
		assert.False(t, d.processOne(ctx))
		stats := d.Stats(ctx)
		assert.Equal(t, int64(2), stats.Failed)
		assert.Equal(t, int64(1), stats.Dropped)
		assert.Empty(t, tx.sent())
	})
}

func TestDispatcherRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemoryQueue(10)
	tx := &recordingTransmitter{}
	d := NewDispatcher(q, tx, 5*time.Millisecond, 4, zap.NewNop())
	require.True(t, d.Start(ctx))
	assert.False(t, d.Start(ctx), "重复启动")

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(ctx, &Request{ID: "x", Name: "MSP_ATTITUDE"}))
	}
	assert.Eventually(t, func() bool { return len(tx.sent()) == 3 }, time.Second, 5*time.Millisecond)

	d.Stop()
	d.Stop()
}

func TestLogTransmitter(t *testing.T) {
	tx := LogTransmitter(nil)
	assert.NoError(t, tx.Transmit(context.Background(), &Request{ID: "1", Payload: []byte{1}}))
}

func TestDispatcherCompletionHook(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)
	tx := &recordingTransmitter{fail: 1}
	d := NewDispatcher(q, tx, 0, 0, nil)

	results := map[string]error{}
	d.SetCompletionHook(func(_ context.Context, req *Request, err error) { results[req.ID] = err })

	require.NoError(t, q.Enqueue(ctx, &Request{ID: "dropped", Priority: PriorityHigh}))
	require.NoError(t, q.Enqueue(ctx, &Request{ID: "ok", Priority: PriorityLow}))
	for d.processOne(ctx) {
	}
	require.Len(t, results, 2)
	assert.NoError(t, results["ok"])
	assert.ErrorIs(t, results["dropped"], ErrMaxRetries)
	assert.Contains(t, results["dropped"].Error(), "link down", "丢弃原因带上发送错误")
}

func TestDispatcherRetryOverLimitedQueue(t *testing.T) {
	ctx := context.Background()
	q := NewLimitedQueue(NewMemoryQueue(16), NewRateLimiter(1, 1))
	tx := &recordingTransmitter{fail: 100}
	d := NewDispatcher(q, tx, 0, 0, nil)

	var cause error
	d.SetCompletionHook(func(_ context.Context, _ *Request, err error) { cause = err })

	require.NoError(t, q.Enqueue(ctx, &Request{ID: "1", Name: "MSP_STATUS", MaxRetry: 3}))
	require.ErrorIs(t, q.Enqueue(ctx, &Request{ID: "2", Name: "MSP_ATTITUDE"}), ErrRateLimited, "令牌已耗尽")

	attempts := 0
	for d.processOne(ctx) {
		attempts++
	}
	assert.Equal(t, 4, attempts, "首次发送加 3 次重试")

	stats := d.Stats(ctx)
	assert.Equal(t, int64(4), stats.Failed)
	assert.Equal(t, int64(3), stats.Retried)
	assert.Equal(t, int64(1), stats.Dropped)
	assert.ErrorIs(t, cause, ErrMaxRetries)
	assert.Equal(t, int64(3), q.Stats().ExemptTotal, "重试不消耗令牌")
}

func TestDispatcherRequeueFailureCause(t *testing.T) {
	ctx := context.Background()
	q := &rejectingQueue{MemoryQueue: NewMemoryQueue(4)}
	d := NewDispatcher(q, &recordingTransmitter{fail: 1}, 0, 0, nil)

	var cause error
	d.SetCompletionHook(func(_ context.Context, _ *Request, err error) { cause = err })

	require.NoError(t, q.MemoryQueue.Enqueue(ctx, &Request{ID: "1", MaxRetry: 3}))
	assert.True(t, d.processOne(ctx))
	assert.ErrorIs(t, cause, ErrQueueFull)
	assert.NotErrorIs(t, cause, ErrMaxRetries)
	assert.Equal(t, int64(1), d.Stats(ctx).Dropped)
}

// rejectingQueue 出队正常，入队总是返回 ErrQueueFull
type rejectingQueue struct {
	*MemoryQueue
}

func (q *rejectingQueue) Enqueue(context.Context, *Request) error {
	return ErrQueueFull
}

func TestDispatcherRestartAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(NewMemoryQueue(4), &recordingTransmitter{}, 5*time.Millisecond, 0, nil)

	require.True(t, d.Start(ctx))
	assert.True(t, d.Stats(ctx).Running)
	cancel()
	assert.Eventually(t, func() bool { return !d.Running() }, time.Second, 5*time.Millisecond)

	fresh := context.Background()
	assert.False(t, d.Stats(fresh).Running)
	require.True(t, d.Start(fresh), "ctx 取消后可以再次启动")
	assert.True(t, d.Running())
	d.Stop()
	assert.False(t, d.Running())
}
