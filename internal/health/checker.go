package health

import (
	"context"
	"fmt"
	"time"
)

// Status 组件状态；Degraded 仍可服务
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// CheckResult 单个组件的检查结果
type CheckResult struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// Checker 组件检查器
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

func ok(start time.Time, details map[string]any) CheckResult {
	return CheckResult{Status: StatusHealthy, Message: "ok", Details: details, Latency: time.Since(start)}
}

func failed(start time.Time, what string, err error) CheckResult {
	return CheckResult{Status: StatusUnhealthy, Message: fmt.Sprintf("%s: %v", what, err), Latency: time.Since(start)}
}

// worsen 仅在 s 更严重时覆盖当前状态
func (r *CheckResult) worsen(s Status, message string) {
	if s.severity() > r.Status.severity() {
		r.Status, r.Message = s, message
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
