package storage

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound 没有对应的快照
var ErrNotFound = errors.New("storage: not found")

// Snapshot 某消息最近一次解码结果的只读副本
type Snapshot struct {
	MessageID   uint16          `json:"message_id"`
	Name        string          `json:"name"`
	Firmware    string          `json:"firmware"`
	Decoded     bool            `json:"decoded"`
	Data        json.RawMessage `json:"data"`
	Derived     json.RawMessage `json:"derived,omitempty"` // 派生量，如 IMU 物理单位
	Description string          `json:"description"`
	Sequence    uint64          `json:"sequence"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// SnapshotStore 最新快照存储
type SnapshotStore interface {
	Put(ctx context.Context, snap *Snapshot) error
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, name string) (*Snapshot, error)
	// List 按消息标识升序
	List(ctx context.Context) ([]*Snapshot, error)
}

// MemorySnapshotStore 进程内快照存储
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	items map[string]*Snapshot
}

var _ SnapshotStore = (*MemorySnapshotStore)(nil)

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{items: make(map[string]*Snapshot)}
}

func (s *MemorySnapshotStore) Put(_ context.Context, snap *Snapshot) error {
	cp := *snap
	s.mu.Lock()
	s.items[snap.Name] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemorySnapshotStore) Get(_ context.Context, name string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.items[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (s *MemorySnapshotStore) List(_ context.Context) ([]*Snapshot, error) {
	s.mu.RLock()
	out := make([]*Snapshot, 0, len(s.items))
	for _, snap := range s.items {
		cp := *snap
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Snapshot) int { return int(a.MessageID) - int(b.MessageID) })
	return out, nil
}
