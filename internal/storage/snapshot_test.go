package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySnapshotStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySnapshotStore()

	_, err := s.Get(ctx, "MSP_STATUS")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Put(ctx, &Snapshot{MessageID: 108, Name: "MSP_ATTITUDE", Data: json.RawMessage(`{}`), ReceivedAt: time.Now()}))
	require.NoError(t, s.Put(ctx, &Snapshot{MessageID: 101, Name: "MSP_STATUS", Sequence: 1}))
	require.NoError(t, s.Put(ctx, &Snapshot{MessageID: 101, Name: "MSP_STATUS", Sequence: 2}))

	got, err := s.Get(ctx, "MSP_STATUS")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Sequence, "覆盖为最新快照")

	got.Sequence = 99
	again, _ := s.Get(ctx, "MSP_STATUS")
	assert.Equal(t, uint64(2), again.Sequence, "返回副本")

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "MSP_STATUS", list[0].Name)
	assert.Equal(t, "MSP_ATTITUDE", list[1].Name)
}
