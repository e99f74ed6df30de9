package msp

import (
	"fmt"
	"slices"
)

// Factory 按固件分支构造消息实例
type Factory func(fw FirmwareVariant) Message

// factories 标识到构造函数的静态表
var factories = map[ID]Factory{
	IDAPIVersion: func(fw FirmwareVariant) Message { return NewApiVersion(fw) },
	IDFCVariant:  func(fw FirmwareVariant) Message { return NewFcVariant(fw) },
	IDFCVersion:  func(fw FirmwareVariant) Message { return NewFcVersion(fw) },
	IDStatus:     func(fw FirmwareVariant) Message { return NewStatus(fw) },
	IDRawIMU:     func(fw FirmwareVariant) Message { return NewRawImu(fw) },
	IDRC:         func(fw FirmwareVariant) Message { return NewRc(fw) },
	IDRawGPS:     func(fw FirmwareVariant) Message { return NewRawGps(fw) },
	IDAttitude:   func(fw FirmwareVariant) Message { return NewAttitude(fw) },
	IDAltitude:   func(fw FirmwareVariant) Message { return NewAltitude(fw) },
	IDAnalog:     func(fw FirmwareVariant) Message { return NewAnalog(fw) },
	IDSetRawRC:   func(fw FirmwareVariant) Message { return NewSetRawRc(fw) },
	IDInavStatus: func(fw FirmwareVariant) Message { return NewInavStatus(fw) },
}

// New 创建 id 对应的消息；未实现的标识返回 ErrUnsupported
func New(id ID, fw FirmwareVariant) (Message, error) {
	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnsupported)
	}
	return f(fw), nil
}

// Supported 已实现的消息标识（升序）
func Supported() []ID {
	ids := make([]ID, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsSupported 是否有对应的消息实现
func IsSupported(id ID) bool {
	_, ok := factories[id]
	return ok
}

// DecodePayload 创建消息并解码载荷
func DecodePayload(id ID, fw FirmwareVariant, payload []byte) (Message, error) {
	msg, err := New(id, fw)
	if err != nil {
		return nil, err
	}
	if !msg.Decode(NewByteVector(payload)) {
		return msg, fmt.Errorf("%s (%d bytes): %w", id, len(payload), ErrDecode)
	}
	return msg, nil
}
