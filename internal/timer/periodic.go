package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// PeriodicTimer 可取消的周期任务调度器
//
// 运行时由单独的 goroutine 在 start, start+P, start+2P, ... 时刻调用回调。
// 截止时间按绝对时间累加，回调耗时不会造成累计漂移；回调过慢时下一次调用
// 被推迟，但不会补发多余的调用。
//
// Stop 会等待工作 goroutine 退出后才返回，因此不能在回调内部调用 Stop/SetPeriod。
type PeriodicTimer struct {
	fn func()

	mu      sync.Mutex // 串行化 Start/Stop/SetPeriod
	period  atomic.Int64
	running atomic.Bool
	stopCh  chan struct{}
	done    chan struct{}
}

// New 创建处于 Idle 状态的定时器
func New(fn func(), period time.Duration) *PeriodicTimer {
	t := &PeriodicTimer{fn: fn}
	t.period.Store(int64(period))
	return t
}

// Start 启动定时器；周期不为正或已在运行时返回 false
func (t *PeriodicTimer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startLocked()
}

func (t *PeriodicTimer) startLocked() bool {
	period := time.Duration(t.period.Load())
	if period <= 0 || t.fn == nil || t.running.Load() {
		return false
	}
	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	t.running.Store(true)
	go t.run(period, t.stopCh, t.done)
	return true
}

// Stop 取消并等待工作 goroutine 退出；未运行时返回 false
func (t *PeriodicTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked()
}

func (t *PeriodicTimer) stopLocked() bool {
	if !t.running.Load() {
		return false
	}
	close(t.stopCh)
	<-t.done
	t.running.Store(false)
	return true
}

// SetPeriod 停止、修改周期、再启动；返回启动结果（周期不为正时保持 Idle）
func (t *PeriodicTimer) SetPeriod(period time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.period.Store(int64(period))
	return t.startLocked()
}

// Period 当前周期
func (t *PeriodicTimer) Period() time.Duration {
	return time.Duration(t.period.Load())
}

// IsRunning 是否处于 Running 状态
func (t *PeriodicTimer) IsRunning() bool {
	return t.running.Load()
}

func (t *PeriodicTimer) run(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var wait *time.Timer
	defer func() {
		if wait != nil {
			wait.Stop()
		}
	}()

	deadline := time.Now()
	for {
		t.fn()
		deadline = deadline.Add(period)

		d := time.Until(deadline)
		if d <= 0 {
			// 已落后：不等待，也不补发
			select {
			case <-stop:
				return
			default:
				continue
			}
		}

		if wait == nil {
			wait = time.NewTimer(d)
		} else {
			wait.Reset(d)
		}
		select {
		case <-stop:
			return
		case <-wait.C:
		}
	}
}
