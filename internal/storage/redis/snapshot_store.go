package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tasifacuj/mission-control/internal/storage"
)

const snapshotHashKey = "mspt:snapshots" // Hash：name -> Snapshot JSON

// SnapshotStore 基于 Redis Hash 的最新快照存储，多个进程可共享
type SnapshotStore struct {
	client *Client
	key    string
	ttl    time.Duration
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore ttl>0 时每次写入刷新整个 Hash 的过期时间
func NewSnapshotStore(client *Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, key: snapshotHashKey, ttl: ttl}
}

func (s *SnapshotStore) Put(ctx context.Context, snap *storage.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.key, snap.Name, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SnapshotStore) Get(ctx context.Context, name string) (*storage.Snapshot, error) {
	data, err := s.client.HGet(ctx, s.key, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", name, err)
	}
	return &snap, nil
}

func (s *SnapshotStore) List(ctx context.Context) ([]*storage.Snapshot, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*storage.Snapshot, 0, len(all))
	for name, data := range all {
		var snap storage.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %s: %w", name, err)
		}
		out = append(out, &snap)
	}
	slices.SortFunc(out, func(a, b *storage.Snapshot) int { return int(a.MessageID) - int(b.MessageID) })
	return out, nil
}
