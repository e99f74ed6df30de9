package subscription

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tasifacuj/mission-control/internal/msp"
	"github.com/tasifacuj/mission-control/internal/timer"
)

// SendFunc 发起一次请求（由定时器或手动触发）
type SendFunc func(msg msp.Message)

// Handle 与消息类型无关的订阅操作，供路由表持有
type Handle interface {
	ID() msp.ID
	Message() msp.Message
	Decode(b *msp.ByteVector) bool
	MakeRequest()
	HandleResponse()
	IsAutomatic() bool
	HasTimer() bool
	Start() bool
	Stop() bool
	Period() time.Duration
	SetTimerPeriod(period time.Duration) bool
	SetTimerFrequency(rateHz float64) bool
	Close()
}

// Subscription 将一个消息实例与接收/发送回调以及可选的周期定时器绑定
//
// 没有定时器（或周期不为正）的订阅为手动订阅，由外部驱动请求/响应。
// 定时器在自己的 goroutine 中调用发送回调；Decode 由传输层串行调用，
// 与定时器触发的发送回调之间不做互斥。
//
// 发送回调中可以调用 Period、IsAutomatic 与 HasTimer；Start、Stop、
// SetTimerPeriod、SetTimerFrequency 与 Close 会等待回调返回，不能在回调中调用。
type Subscription[M msp.Message] struct {
	mu        sync.RWMutex
	msg       M
	onReceive func(M)
	onSend    SendFunc

	timerMu sync.Mutex // 串行化定时器的创建与重新配置
	timer   atomic.Pointer[timer.PeriodicTimer]
}

var _ Handle = (*Subscription[*msp.Status])(nil)

// New 创建订阅；period 为正时立即创建并启动定时器
func New[M msp.Message](msg M, onReceive func(M), onSend SendFunc, period time.Duration) *Subscription[M] {
	s := &Subscription[M]{msg: msg, onReceive: onReceive, onSend: onSend}
	if period > 0 {
		s.SetTimerPeriod(period)
	}
	return s
}

// ID 所持消息的标识
func (s *Subscription[M]) ID() msp.ID {
	return s.IOObject().ID()
}

// IOObject 所持的具体消息实例
func (s *Subscription[M]) IOObject() M {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.msg
}

// Message 以接口形式返回所持消息
func (s *Subscription[M]) Message() msp.Message {
	return s.IOObject()
}

// SetIOObject 替换所持消息实例
func (s *Subscription[M]) SetIOObject(msg M) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

func (s *Subscription[M]) SetReceiveCallback(fn func(M)) {
	s.mu.Lock()
	s.onReceive = fn
	s.mu.Unlock()
}

func (s *Subscription[M]) SetSendCallback(fn SendFunc) {
	s.mu.Lock()
	s.onSend = fn
	s.mu.Unlock()
}

// Decode 解码到所持消息，然后无条件调用接收回调；返回解码结果
func (s *Subscription[M]) Decode(b *msp.ByteVector) bool {
	s.mu.RLock()
	msg, fn := s.msg, s.onReceive
	s.mu.RUnlock()

	ok := msg.Decode(b)
	if fn != nil {
		fn(msg)
	}
	return ok
}

// HandleResponse 以当前消息状态调用接收回调
func (s *Subscription[M]) HandleResponse() {
	s.mu.RLock()
	msg, fn := s.msg, s.onReceive
	s.mu.RUnlock()
	if fn != nil {
		fn(msg)
	}
}

// MakeRequest 调用发送回调（若存在）
func (s *Subscription[M]) MakeRequest() {
	s.mu.RLock()
	msg, fn := s.msg, s.onSend
	s.mu.RUnlock()
	if fn != nil {
		fn(msg)
	}
}

func (s *Subscription[M]) HasTimer() bool {
	return s.timer.Load() != nil
}

// IsAutomatic 有定时器且周期为正
func (s *Subscription[M]) IsAutomatic() bool {
	return s.Period() > 0
}

// Period 定时器周期；没有定时器时为 0
func (s *Subscription[M]) Period() time.Duration {
	tm := s.timer.Load()
	if tm == nil {
		return 0
	}
	return tm.Period()
}

// Start 启动定时器；没有定时器时返回 false
func (s *Subscription[M]) Start() bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	tm := s.timer.Load()
	if tm == nil {
		return false
	}
	return tm.Start()
}

// Stop 停止定时器并等待在途的发送回调结束
func (s *Subscription[M]) Stop() bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	tm := s.timer.Load()
	if tm == nil {
		return false
	}
	return tm.Stop()
}

// SetTimerPeriod 已有定时器时按 停止→修改→启动 重新配置；
// 否则仅在周期为正时创建并启动定时器。返回定时器是否在运行。
func (s *Subscription[M]) SetTimerPeriod(period time.Duration) bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if tm := s.timer.Load(); tm != nil {
		return tm.SetPeriod(period)
	}
	if period <= 0 {
		return false
	}
	tm := timer.New(s.MakeRequest, period)
	s.timer.Store(tm)
	return tm.Start()
}

// SetTimerFrequency 以 Hz 设置周期；rateHz 不为正时停止已有定时器
func (s *Subscription[M]) SetTimerFrequency(rateHz float64) bool {
	return s.SetTimerPeriod(PeriodFromRate(rateHz))
}

// Close 停止定时器
func (s *Subscription[M]) Close() {
	s.Stop()
}

// PeriodFromRate 频率转周期；rateHz 不为正时返回 0
func PeriodFromRate(rateHz float64) time.Duration {
	if rateHz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / rateHz)
}
