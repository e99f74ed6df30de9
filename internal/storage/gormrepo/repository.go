package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tasifacuj/mission-control/internal/storage"
	"github.com/tasifacuj/mission-control/internal/storage/models"
)

const defaultListLimit = 100

// Repository 基于 GORM 的 TelemetryRepo 实现。
// 使用 isTx 标记区分事务上下文，避免嵌套事务重复 Begin/Commit。
type Repository struct {
	db   *gorm.DB
	isTx bool
}

var _ storage.TelemetryRepo = (*Repository)(nil)

// New 返回一个使用给定 *gorm.DB 的 Repository 实例。
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate 创建或更新遥测相关的表
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&models.TelemetrySample{}, &models.RequestLog{})
}

// WithTx 复用现有事务或开启新事务执行 fn。
func (r *Repository) WithTx(ctx context.Context, fn func(storage.TelemetryRepo) error) error {
	if r.isTx {
		return fn(r)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	child := &Repository{db: tx, isTx: true}
	if err := fn(child); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// AppendSample 追加一条遥测样本；未设置 ReceivedAt 时取当前时间。
func (r *Repository) AppendSample(ctx context.Context, sample *models.TelemetrySample) error {
	if sample.ReceivedAt.IsZero() {
		sample.ReceivedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(sample).Error
}

// ListSamples 按接收时间倒序返回样本；messageID 为 0 时不过滤。
func (r *Repository) ListSamples(ctx context.Context, messageID uint16, limit int) ([]models.TelemetrySample, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := r.db.WithContext(ctx).Model(&models.TelemetrySample{})
	if messageID != 0 {
		q = q.Where("message_id = ?", messageID)
	}

	var out []models.TelemetrySample
	err := q.Order("received_at DESC").Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// PruneSamples 删除 before 之前接收的样本。
func (r *Repository) PruneSamples(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("received_at < ?", before).
		Delete(&models.TelemetrySample{})
	return res.RowsAffected, res.Error
}

// AppendRequestLog 记录请求；同一 request_id 重复写入时更新状态与重试次数。
func (r *Repository) AppendRequestLog(ctx context.Context, log *models.RequestLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "retries"}),
		}).
		Create(log).Error
}

// ListRecentRequestLogs 最近的请求日志。
func (r *Repository) ListRecentRequestLogs(ctx context.Context, limit int) ([]models.RequestLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var out []models.RequestLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
