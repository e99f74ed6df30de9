package outbound

import (
	"time"

	"github.com/google/uuid"

	"github.com/tasifacuj/mission-control/internal/msp"
)

// Request 待发往飞控的一次 MSP 请求
//
// Payload 为消息编码结果；多数遥测请求没有载荷，仅携带标识。
// 分帧与校验由外部传输层负责。
type Request struct {
	ID        string    `json:"id"`         // 请求ID（唯一）
	MessageID msp.ID    `json:"message_id"` // MSP 消息标识
	Name      string    `json:"name"`       // 线路名称
	Payload   []byte    `json:"payload"`    // 请求载荷
	Priority  int       `json:"priority"`   // 优先级（越小越优先）
	Retries   int       `json:"retries"`    // 已重试次数
	MaxRetry  int       `json:"max_retry"`  // 最大重试次数
	CreatedAt time.Time `json:"created_at"` // 创建时间
}

// NewRequest 由消息构造请求；不支持编码的消息以空载荷请求
func NewRequest(msg msp.Message, maxRetry int) *Request {
	var payload []byte
	if b, ok := msg.Encode(); ok {
		payload = append([]byte(nil), b.Bytes()...)
	}
	id := msg.ID()
	return &Request{
		ID:        uuid.NewString(),
		MessageID: id,
		Name:      id.String(),
		Payload:   payload,
		Priority:  GetRequestPriority(id),
		MaxRetry:  maxRetry,
		CreatedAt: time.Now(),
	}
}
