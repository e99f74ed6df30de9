package models

import (
	"time"
)

// 注意：
// - 表结构由 gormrepo.AutoMigrate 维护
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// TelemetrySample 映射 telemetry_samples 表
type TelemetrySample struct {
	// 主键
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 消息标识及名称
	MessageID uint16 `gorm:"column:message_id;not null;index:idx_samples_msg_time,priority:1"`
	Name      string `gorm:"column:name;type:varchar(64);not null"`
	// 固件类型（INAV/BTFL/...）
	Firmware string `gorm:"column:firmware;type:varchar(8);not null"`
	// 解码是否完整
	Decoded bool `gorm:"column:decoded;not null"`
	// 解码后的字段（JSON）
	Data []byte `gorm:"column:data;type:jsonb"`
	// 派生量，如 IMU 物理单位，可空
	Derived []byte `gorm:"column:derived;type:jsonb"`
	// 原始负载长度
	PayloadLen int `gorm:"column:payload_len;not null"`
	// 路由器内的接收序号
	Sequence   uint64    `gorm:"column:sequence;not null"`
	ReceivedAt time.Time `gorm:"column:received_at;not null;index:idx_samples_msg_time,priority:2"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TelemetrySample) TableName() string { return "telemetry_samples" }

// RequestLog 映射 request_logs 表
type RequestLog struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 出站请求 ID（uuid）
	RequestID string `gorm:"column:request_id;type:varchar(36);not null;uniqueIndex"`
	MessageID uint16 `gorm:"column:message_id;not null"`
	Name      string `gorm:"column:name;type:varchar(64);not null"`
	Priority  int    `gorm:"column:priority;not null"`
	// 负载长度
	PayloadLen int `gorm:"column:payload_len;not null"`
	// sent / dropped
	Status    string    `gorm:"column:status;type:varchar(16);not null"`
	Retries   int       `gorm:"column:retries;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RequestLog) TableName() string { return "request_logs" }

// RequestLog.Status 取值
const (
	RequestStatusSent    = "sent"
	RequestStatusDropped = "dropped"
)
