package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/tasifacuj/mission-control/internal/config"
	"github.com/tasifacuj/mission-control/internal/msp"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage"
	"github.com/tasifacuj/mission-control/internal/storage/models"
	"github.com/tasifacuj/mission-control/internal/telemetry"
)

type fakeRepo struct {
	mu       sync.Mutex
	logs     []*models.RequestLog
	before   time.Time
	pruned   int64
	pruneErr error
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(storage.TelemetryRepo) error) error {
	return fn(f)
}
func (f *fakeRepo) AppendSample(context.Context, *models.TelemetrySample) error { return nil }
func (f *fakeRepo) ListSamples(context.Context, uint16, int) ([]models.TelemetrySample, error) {
	return nil, nil
}
func (f *fakeRepo) PruneSamples(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	f.pruned += 3
	return 3, nil
}
func (f *fakeRepo) AppendRequestLog(_ context.Context, l *models.RequestLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}
func (f *fakeRepo) ListRecentRequestLogs(context.Context, int) ([]models.RequestLog, error) {
	return nil, nil
}

func TestNewRouterFromConfig(t *testing.T) {
	cfg := cfgpkg.MSPConfig{
		Firmware:    "INAV",
		Calibration: msp.DefaultCalibration(),
		Subscriptions: []cfgpkg.SubscriptionConfig{
			{Message: "MSP_ATTITUDE", RateHz: 20},
			{Message: "MSP_ANALOG"},
		},
	}
	router, err := NewRouter(cfg, telemetry.Options{}, zap.NewNop())
	require.NoError(t, err)
	defer router.Close()

	subs := router.Subscriptions()
	require.Len(t, subs, 2)
	assert.Equal(t, msp.IDAnalog, subs[0].ID)
	assert.False(t, subs[0].Automatic)
	assert.True(t, subs[1].Automatic)
	assert.Equal(t, msp.FirmwareINAV, router.Firmware())

	_, err = NewRouter(cfgpkg.MSPConfig{Firmware: "PX4"}, telemetry.Options{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewRouter(cfgpkg.MSPConfig{Subscriptions: []cfgpkg.SubscriptionConfig{{Message: "nope"}}}, telemetry.Options{}, zap.NewNop())
	assert.ErrorIs(t, err, msp.ErrUnknownID)
}

func TestDispatcherRequestLog(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	cfg := cfgpkg.OutboundConfig{QueueSize: 8, RateLimit: 100, Burst: 100}
	q := NewOutboundQueue(NewBaseQueue(nil, cfg), cfg)

	var fail atomic.Bool
	fail.Store(true)
	tx := outbound.TransmitFunc(func(context.Context, *outbound.Request) error {
		if fail.Load() {
			return errors.New("link down")
		}
		return nil
	})
	d := NewDispatcher(q, tx, cfg, repo, nil, zap.NewNop())

	require.NoError(t, q.Enqueue(ctx, outbound.NewRequest(msp.NewStatus(msp.FirmwareINAV), 0)))
	d.Start(ctx)
	assert.Eventually(t, func() bool { return d.Stats(ctx).Dropped == 1 }, time.Second, 5*time.Millisecond)
	fail.Store(false)
	require.NoError(t, q.Enqueue(ctx, outbound.NewRequest(msp.NewAttitude(msp.FirmwareINAV), 0)))
	assert.Eventually(t, func() bool { return d.Stats(ctx).Sent == 1 }, time.Second, 5*time.Millisecond)
	d.Stop()

	require.Len(t, repo.logs, 2)
	assert.Equal(t, models.RequestStatusDropped, repo.logs[0].Status)
	assert.Equal(t, "MSP_STATUS", repo.logs[0].Name)
	assert.Equal(t, models.RequestStatusSent, repo.logs[1].Status)
}

func TestSamplePruner(t *testing.T) {
	repo := &fakeRepo{}
	p := NewSamplePruner(repo, 48*time.Hour, zap.NewNop())
	assert.Equal(t, time.Hour, p.checkInterval)
	assert.Equal(t, time.Minute, NewSamplePruner(repo, time.Minute, zap.NewNop()).checkInterval)

	now := time.Now()
	p.prune(context.Background(), now)
	assert.Equal(t, now.Add(-48*time.Hour), repo.before)
	assert.Equal(t, int64(3), p.Stats()["total_pruned"])

	repo.pruneErr = errors.New("db down")
	p.prune(context.Background(), now)
	assert.Equal(t, int64(3), p.Stats()["total_pruned"])
}

func TestSnapshotStoreFallback(t *testing.T) {
	s := NewSnapshotStore(nil, cfgpkg.RedisConfig{})
	_, ok := s.(*storage.MemorySnapshotStore)
	assert.True(t, ok)

	client, err := NewRedisClient(context.Background(), cfgpkg.RedisConfig{Enabled: false}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, client)
}

type fixedStats outbound.DispatcherStats

func (s fixedStats) Stats(context.Context) outbound.DispatcherStats { return outbound.DispatcherStats(s) }

func TestDispatcherMetrics(t *testing.T) {
	reg, _ := NewMetrics()
	require.NoError(t, RegisterDispatcherMetrics(reg, fixedStats{Pending: 3, Sent: 10, Dropped: 2}))

	n, err := testutil.GatherAndCount(reg, "msp_outbound_pending", "msp_outbound_events_total")
	require.NoError(t, err)
	assert.Equal(t, 5, n, "pending 加四种事件")

	assert.Error(t, RegisterDispatcherMetrics(reg, fixedStats{}), "重复注册")
}
