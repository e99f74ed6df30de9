package msp

import (
	"encoding/json"
	"fmt"
)

// Value 协议字段：数据 + 是否由最近一次解码填充的标记。
// 零值可直接使用：Data() 返回 T 的零值，IsSet() 为 false。
// 未设置表示“最近一次解码/打包未填充”，而不是“值为 0”。
type Value[T any] struct {
	data T
	set  bool
}

// NewValue 创建未标记为已设置的值
func NewValue[T any](v T) Value[T] {
	return Value[T]{data: v}
}

// Get 返回数据以及是否已由协议数据填充
func (v Value[T]) Get() (T, bool) {
	return v.data, v.set
}

// Data 返回数据（不检查是否已设置）
func (v Value[T]) Data() T {
	return v.data
}

// IsSet 是否已由解包或 Set 填充
func (v Value[T]) IsSet() bool {
	return v.set
}

// Assign 写入调用方提供的值，并清除已设置标记（尚未经过线路格式往返）
func (v *Value[T]) Assign(data T) {
	v.data = data
	v.set = false
}

// Set 写入数据并标记为已设置
func (v *Value[T]) Set(data T) {
	v.data = data
	v.set = true
}

// Reset 清空数据与标记
func (v *Value[T]) Reset() {
	var zero T
	v.data = zero
	v.set = false
}

func (v Value[T]) String() string {
	if !v.set {
		return "<unset>"
	}
	return fmt.Sprint(v.data)
}

// MarshalJSON 未设置时输出 null
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.data)
}

// UnmarshalJSON null 对应未设置
func (v *Value[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		v.Reset()
		return nil
	}
	var data T
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}
	v.Set(data)
	return nil
}
