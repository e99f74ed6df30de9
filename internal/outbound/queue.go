package outbound

import (
	"container/heap"
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueFull 内存队列已满
	ErrQueueFull = errors.New("outbound: queue full")
	// ErrRateLimited 入队速率超限
	ErrRateLimited = errors.New("outbound: rate limited")
)

// Queue 请求队列：按优先级、再按创建时间出队
type Queue interface {
	Enqueue(ctx context.Context, req *Request) error
	// Dequeue 队列为空时返回 (nil, nil)
	Dequeue(ctx context.Context) (*Request, error)
	Len(ctx context.Context) (int64, error)
}

// MemoryQueue 进程内有界优先级队列，未启用 Redis 时使用
type MemoryQueue struct {
	mu       sync.Mutex
	items    requestHeap
	capacity int
	seq      uint64
}

var _ Queue = (*MemoryQueue)(nil)

// NewMemoryQueue capacity<=0 时默认 1024
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryQueue{capacity: capacity}
}

func (q *MemoryQueue) Enqueue(_ context.Context, req *Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.seq++
	heap.Push(&q.items, queued{req: req, seq: q.seq})
	return nil
}

func (q *MemoryQueue) Dequeue(_ context.Context) (*Request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, nil
	}
	return heap.Pop(&q.items).(queued).req, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

type queued struct {
	req *Request
	seq uint64
}

// requestHeap 实现 heap.Interface
type requestHeap []queued

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.req.Priority != b.req.Priority {
		return a.req.Priority < b.req.Priority
	}
	if !a.req.CreatedAt.Equal(b.req.CreatedAt) {
		return a.req.CreatedAt.Before(b.req.CreatedAt)
	}
	return a.seq < b.seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) { *h = append(*h, x.(queued)) }

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
