package msp

import "fmt"

// Rc MSP_RC (105)：u16 通道值，连续读取直到数据耗尽
//
// 通道数不在线路上编码；末尾不足 2 字节的残余被忽略。一个通道都没有读到时解码失败。
type Rc struct {
	base
	Channels []uint16 `json:"channels"`
}

// NewRc 创建 Rc
func NewRc(fw FirmwareVariant) *Rc {
	return &Rc{base: base{fw: fw}}
}

func (m *Rc) ID() ID { return IDRC }

// Decode 每次解码生成新的通道切片，之前取得的 Channels 不会被改写
func (m *Rc) Decode(b *ByteVector) bool {
	channels := make([]uint16, 0, b.Remaining()/2)
	var ch uint16
	for Unpack(b, &ch) {
		channels = append(channels, ch)
	}
	m.Channels = channels
	return len(channels) > 0
}

func (m *Rc) Describe() string {
	t := newText("Rc")
	t.line("Channels: %d", len(m.Channels))
	for i, ch := range m.Channels {
		t.line("  %d: %d us", i+1, ch)
	}
	return t.String()
}

// SetRawRc MSP_SET_RAW_RC (200)：仅编码，发送通道覆盖值
type SetRawRc struct {
	base
	Channels []uint16 `json:"channels"`
}

// NewSetRawRc 创建 SetRawRc
func NewSetRawRc(fw FirmwareVariant) *SetRawRc {
	return &SetRawRc{base: base{fw: fw}}
}

func (m *SetRawRc) ID() ID { return IDSetRawRC }

// Decode 该消息没有响应载荷
func (m *SetRawRc) Decode(*ByteVector) bool {
	return false
}

// Encode 依次打包 u16 通道值；没有通道时不产生载荷
func (m *SetRawRc) Encode() (*ByteVector, bool) {
	if len(m.Channels) == 0 {
		return nil, false
	}
	b := NewByteVector(nil)
	for _, ch := range m.Channels {
		Pack(b, ch)
	}
	return b, true
}

func (m *SetRawRc) Describe() string {
	return newText("SetRawRc").line("Channels: %s", fmt.Sprint(m.Channels)).String()
}
