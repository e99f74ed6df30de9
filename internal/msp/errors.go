package msp

import "errors"

var (
	// ErrUnknownID 未定义的消息标识
	ErrUnknownID = errors.New("msp: unknown message id")
	// ErrUnsupported 该消息类型未实现解码或编码
	ErrUnsupported = errors.New("msp: unsupported for this message type")
	// ErrDecode 载荷解码失败（数据不足或变长字段为空）
	ErrDecode = errors.New("msp: decode failed")
)
