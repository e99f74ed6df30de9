package storage

import (
	"context"
	"time"

	"github.com/tasifacuj/mission-control/internal/storage/models"
)

// SampleRecorder 路由器写入遥测样本所需的最小接口
type SampleRecorder interface {
	AppendSample(ctx context.Context, sample *models.TelemetrySample) error
}

// TelemetryRepo 遥测历史的存储抽象
// 约束：
// - 上层不直接写 SQL，统一通过本接口访问
// - 接口保持 DB-agnostic（面向模型与基础类型）
type TelemetryRepo interface {
	// WithTx 在单个事务中执行 fn；嵌套调用复用当前事务
	WithTx(ctx context.Context, fn func(repo TelemetryRepo) error) error

	// ---------- 遥测样本 ----------
	// AppendSample 追加一条解码后的遥测样本
	AppendSample(ctx context.Context, sample *models.TelemetrySample) error
	// ListSamples 按时间倒序返回某消息的样本（messageID=0 表示全部）
	ListSamples(ctx context.Context, messageID uint16, limit int) ([]models.TelemetrySample, error)
	// PruneSamples 删除 before 之前的样本，返回删除条数
	PruneSamples(ctx context.Context, before time.Time) (int64, error)

	// ---------- 请求日志 ----------
	// AppendRequestLog 记录一次发出的请求
	AppendRequestLog(ctx context.Context, log *models.RequestLog) error
	// ListRecentRequestLogs 最近的请求日志
	ListRecentRequestLogs(ctx context.Context, limit int) ([]models.RequestLog, error)
}
