package msp

import (
	"fmt"
	"strings"
)

// Message MSP 载荷的统一能力：标识、解码、编码、描述
//
// Decode 每次调用都完整覆盖之前的字段状态；失败时已成功解出的字段保持已设置，
// 其余字段为未设置。Encode 默认不支持，返回 (nil, false)。
// 单个实例不做内部加锁，由调用方串行化访问。
type Message interface {
	ID() ID
	FirmwareVariant() FirmwareVariant
	SetFirmwareVariant(fw FirmwareVariant)
	Decode(b *ByteVector) bool
	Encode() (*ByteVector, bool)
	Describe() string
}

// base 各消息共享的固件分支标记与默认编码行为
type base struct {
	fw FirmwareVariant
}

func (m *base) FirmwareVariant() FirmwareVariant {
	return m.fw
}

func (m *base) SetFirmwareVariant(fw FirmwareVariant) {
	m.fw = fw
}

// Encode 默认不支持编码
func (m *base) Encode() (*ByteVector, bool) {
	return nil, false
}

// text 逐行构造 Describe 输出
type text struct {
	sb strings.Builder
}

func newText(title string) *text {
	t := &text{}
	t.sb.WriteString("#" + title + ":\n")
	return t
}

func (t *text) line(format string, args ...any) *text {
	t.sb.WriteString(" ")
	fmt.Fprintf(&t.sb, format, args...)
	t.sb.WriteString("\n")
	return t
}

func (t *text) String() string {
	return t.sb.String()
}

// onOff 传感器开关渲染
func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

// triple 渲染三轴数据
func triple[T any](v [3]Value[T]) string {
	return fmt.Sprintf("%v, %v, %v", v[0], v[1], v[2])
}
