package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tasifacuj/mission-control/internal/metrics"
	"github.com/tasifacuj/mission-control/internal/msp"
	"github.com/tasifacuj/mission-control/internal/outbound"
	"github.com/tasifacuj/mission-control/internal/storage"
	"github.com/tasifacuj/mission-control/internal/storage/models"
	"github.com/tasifacuj/mission-control/internal/subscription"
)

var (
	// ErrNotSubscribed 该消息没有订阅
	ErrNotSubscribed = errors.New("telemetry: not subscribed")
	// ErrAlreadySubscribed 同一消息只允许一个订阅
	ErrAlreadySubscribed = errors.New("telemetry: already subscribed")
)

// Options 路由器依赖；Queue 与 Snapshots 必填，其余可为 nil
type Options struct {
	Firmware    msp.FirmwareVariant
	Calibration msp.Calibration
	Queue       outbound.Queue
	Snapshots   storage.SnapshotStore
	Recorder    storage.SampleRecorder
	Metrics     *metrics.AppMetrics
	MaxRetries  int
	Logger      *zap.Logger
}

// Router 按消息标识分发响应载荷，并把订阅的请求送入出站队列
//
// 每个标识最多一个订阅。并发的 Route 在同一订阅上串行执行 解码→快照→保存，
// 接收回调在该锁内运行，不能再对同一标识调用 Route。
type Router struct {
	opts   Options
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[msp.ID]*entry

	seq atomic.Uint64
}

// entry 订阅及其解码锁
type entry struct {
	mu  sync.Mutex
	sub subscription.Handle
}

// NewRouter 创建路由器；Queue 或 Snapshots 为 nil 时使用进程内实现
func NewRouter(opts Options) *Router {
	if opts.Queue == nil {
		opts.Queue = outbound.NewMemoryQueue(0)
	}
	if opts.Snapshots == nil {
		opts.Snapshots = storage.NewMemorySnapshotStore()
	}
	if opts.Calibration.AccOneG == 0 {
		opts.Calibration = msp.DefaultCalibration()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{opts: opts, logger: logger, subs: make(map[msp.ID]*entry)}
}

// Firmware 新建消息使用的固件分支
func (r *Router) Firmware() msp.FirmwareVariant {
	return r.opts.Firmware
}

// Subscribe 为 msg 注册订阅；period 为正时按周期自动请求
func Subscribe[M msp.Message](r *Router, msg M, onReceive func(M), period time.Duration) (*subscription.Subscription[M], error) {
	id := msg.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[id]; ok {
		return nil, fmt.Errorf("%s: %w", id, ErrAlreadySubscribed)
	}
	sub := subscription.New(msg, onReceive, r.sendFunc(), period)
	r.subs[id] = &entry{sub: sub}
	r.updateGaugeLocked()
	r.logger.Info("subscribed",
		zap.String("message", id.String()),
		zap.Duration("period", period))
	return sub, nil
}

// SubscribeID 以注册表中的消息类型订阅 id，只更新快照
func (r *Router) SubscribeID(id msp.ID, rateHz float64) (subscription.Handle, error) {
	msg, err := msp.New(id, r.opts.Firmware)
	if err != nil {
		return nil, err
	}
	return Subscribe(r, msg, nil, subscription.PeriodFromRate(rateHz))
}

// Unsubscribe 停止并移除订阅
func (r *Router) Unsubscribe(id msp.ID) bool {
	r.mu.Lock()
	e, ok := r.subs[id]
	delete(r.subs, id)
	r.updateGaugeLocked()
	r.mu.Unlock()
	if ok {
		e.sub.Close()
	}
	return ok
}

func (r *Router) lookup(id msp.ID) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.subs[id]
	return e, ok
}

// Route 解码 id 的响应载荷并保存快照。
// 有订阅时经由订阅解码（触发接收回调）；否则按注册表临时构造消息。
// 解码失败时仍保存标记为未完整解码的快照，并返回包装了 msp.ErrDecode 的错误。
func (r *Router) Route(ctx context.Context, id msp.ID, payload []byte) (*storage.Snapshot, error) {
	var (
		msg msp.Message
		ok  bool
	)
	if e, found := r.lookup(id); found {
		e.mu.Lock()
		defer e.mu.Unlock()
		ok = e.sub.Decode(msp.NewByteVector(payload))
		msg = e.sub.Message()
	} else {
		fresh, err := msp.New(id, r.opts.Firmware)
		if err != nil {
			return nil, err
		}
		ok = fresh.Decode(msp.NewByteVector(payload))
		msg = fresh
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.DecodeTotal.WithLabelValues(id.String(), metrics.Result(ok)).Inc()
	}

	snap, err := r.snapshot(msg, ok)
	if err != nil {
		return nil, err
	}
	if err := r.opts.Snapshots.Put(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot %s: %w", id, err)
	}
	r.record(ctx, snap, len(payload))

	if !ok {
		r.logger.Debug("decode failed",
			zap.String("message", id.String()),
			zap.Int("payload_len", len(payload)))
		return snap, fmt.Errorf("%s (%d bytes): %w", id, len(payload), msp.ErrDecode)
	}
	return snap, nil
}

func (r *Router) snapshot(msg msp.Message, decoded bool) (*storage.Snapshot, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msg.ID(), err)
	}
	snap := &storage.Snapshot{
		MessageID:   uint16(msg.ID()),
		Name:        msg.ID().String(),
		Firmware:    msg.FirmwareVariant().String(),
		Decoded:     decoded,
		Data:        data,
		Description: msg.Describe(),
		Sequence:    r.seq.Add(1),
		ReceivedAt:  time.Now(),
	}
	if raw, isImu := msg.(*msp.RawImu); isImu && decoded {
		units := msp.NewImuPhysicalUnits(raw, r.opts.Calibration)
		if snap.Derived, err = json.Marshal(units); err != nil {
			return nil, fmt.Errorf("marshal imu units: %w", err)
		}
	}
	return snap, nil
}

// record 写入历史；失败只记录日志
func (r *Router) record(ctx context.Context, snap *storage.Snapshot, payloadLen int) {
	if r.opts.Recorder == nil {
		return
	}
	sample := &models.TelemetrySample{
		MessageID:  snap.MessageID,
		Name:       snap.Name,
		Firmware:   snap.Firmware,
		Decoded:    snap.Decoded,
		Data:       snap.Data,
		Derived:    snap.Derived,
		PayloadLen: payloadLen,
		Sequence:   snap.Sequence,
		ReceivedAt: snap.ReceivedAt,
	}
	if err := r.opts.Recorder.AppendSample(ctx, sample); err != nil {
		r.logger.Warn("record sample failed",
			zap.String("message", snap.Name),
			zap.Error(err))
	}
}

// Request 为已订阅的 id 发起一次请求
func (r *Router) Request(ctx context.Context, id msp.ID) (*outbound.Request, error) {
	e, ok := r.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotSubscribed)
	}
	return r.send(ctx, e.sub.Message())
}

// Send 发送任意消息（如 MSP_SET_RAW_RC），不要求订阅
func (r *Router) Send(ctx context.Context, msg msp.Message) (*outbound.Request, error) {
	return r.send(ctx, msg)
}

func (r *Router) sendFunc() subscription.SendFunc {
	return func(msg msp.Message) {
		if _, err := r.send(context.Background(), msg); err != nil {
			r.logger.Debug("periodic request not queued",
				zap.String("message", msg.ID().String()),
				zap.Error(err))
		}
	}
}

func (r *Router) send(ctx context.Context, msg msp.Message) (*outbound.Request, error) {
	req := outbound.NewRequest(msg, r.opts.MaxRetries)
	err := r.opts.Queue.Enqueue(ctx, req)

	if m := r.opts.Metrics; m != nil {
		m.RequestTotal.WithLabelValues(req.Name).Inc()
		switch {
		case err == nil:
			m.OutboundEnqueueTotal.WithLabelValues("ok").Inc()
		case errors.Is(err, outbound.ErrRateLimited):
			m.OutboundEnqueueTotal.WithLabelValues("rate_limited").Inc()
			m.OutboundRateLimited.Inc()
		default:
			m.OutboundEnqueueTotal.WithLabelValues("error").Inc()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", req.Name, err)
	}
	return req, nil
}

// SetRate 重新配置订阅的请求频率；rateHz 不为正时停止自动请求。
// 返回定时器是否在运行。
func (r *Router) SetRate(id msp.ID, rateHz float64) (bool, error) {
	e, ok := r.lookup(id)
	if !ok {
		return false, fmt.Errorf("%s: %w", id, ErrNotSubscribed)
	}
	running := e.sub.SetTimerFrequency(rateHz)

	r.mu.RLock()
	r.updateGaugeLocked()
	r.mu.RUnlock()
	r.logger.Info("subscription rate changed",
		zap.String("message", id.String()),
		zap.Float64("rate_hz", rateHz),
		zap.Bool("running", running))
	return running, nil
}

// SubscriptionInfo 订阅状态
type SubscriptionInfo struct {
	ID        msp.ID        `json:"id"`
	Name      string        `json:"name"`
	Automatic bool          `json:"automatic"`
	Period    time.Duration `json:"period_ns"`
	RateHz    float64       `json:"rate_hz"`
}

// Subscriptions 按标识升序列出订阅
func (r *Router) Subscriptions() []SubscriptionInfo {
	r.mu.RLock()
	out := make([]SubscriptionInfo, 0, len(r.subs))
	for id, e := range r.subs {
		info := SubscriptionInfo{ID: id, Name: id.String(), Period: e.sub.Period()}
		info.Automatic = info.Period > 0
		if info.Automatic {
			info.RateHz = float64(time.Second) / float64(info.Period)
		}
		out = append(out, info)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b SubscriptionInfo) int { return int(a.ID) - int(b.ID) })
	return out
}

// Snapshot 最近一次快照
func (r *Router) Snapshot(ctx context.Context, id msp.ID) (*storage.Snapshot, error) {
	return r.opts.Snapshots.Get(ctx, id.String())
}

// Snapshots 所有快照
func (r *Router) Snapshots(ctx context.Context) ([]*storage.Snapshot, error) {
	return r.opts.Snapshots.List(ctx)
}

// Close 停止全部订阅的定时器
func (r *Router) Close() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[msp.ID]*entry)
	r.updateGaugeLocked()
	r.mu.Unlock()
	for _, e := range subs {
		e.sub.Close()
	}
}

// updateGaugeLocked 调用方持有 r.mu（读或写）
func (r *Router) updateGaugeLocked() {
	if r.opts.Metrics == nil {
		return
	}
	n := 0
	for _, e := range r.subs {
		if e.sub.IsAutomatic() {
			n++
		}
	}
	r.opts.Metrics.SubscriptionsAutomatic.Set(float64(n))
}
