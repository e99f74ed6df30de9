package health

import (
	"context"
	"database/sql"
	"time"
)

// DatabaseChecker 遥测历史库（gorm 底层连接池）
type DatabaseChecker struct {
	db *sql.DB
}

func NewDatabaseChecker(db *sql.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

func (c *DatabaseChecker) Name() string { return "database" }

// Check 连接池使用率超过 90% 降级；占满且有等待时不健康
func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.db.PingContext(ctx); err != nil {
		return failed(start, "ping", err)
	}

	s := c.db.Stats()
	var used float64
	if s.MaxOpenConnections > 0 {
		used = float64(s.InUse) / float64(s.MaxOpenConnections)
	}
	r := ok(start, map[string]any{
		"open":        s.OpenConnections,
		"in_use":      s.InUse,
		"idle":        s.Idle,
		"max_open":    s.MaxOpenConnections,
		"wait_count":  s.WaitCount,
		"utilization": percent(used),
	})
	if used > 0.9 {
		r.worsen(StatusDegraded, "pool near limit")
	}
	if used >= 1 && s.WaitCount > 0 {
		r.worsen(StatusUnhealthy, "pool exhausted")
	}
	return r
}
