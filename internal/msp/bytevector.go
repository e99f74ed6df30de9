package msp

import (
	"bytes"
	"encoding/hex"
	"math"
	"unsafe"
)

// Unbounded 作为 maxLen/count 参数时表示不限制长度（或取剩余全部字节）
const Unbounded = -1

// Integer 可打包的定长整数类型
type Integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// ByteVector 顺序打包/解包的字节缓冲区
//
// 写入总是追加到末尾；读取使用单一游标，从 0 开始单调递增，且不会超过缓冲区长度。
// 所有解包操作要么完整成功，要么失败且游标与输出参数保持不变。
// 解包会移动游标，因此即使不修改字节内容也需要 *ByteVector。
// 非并发安全。
type ByteVector struct {
	data   []byte
	offset int
}

// NewByteVector 以 data 的副本创建缓冲区，游标位于 0
func NewByteVector(data []byte) *ByteVector {
	return &ByteVector{data: append([]byte(nil), data...)}
}

// Bytes 返回底层字节
func (b *ByteVector) Bytes() []byte {
	return b.data
}

// Len 缓冲区总长度
func (b *ByteVector) Len() int {
	return len(b.data)
}

// Offset 当前解包游标位置
func (b *ByteVector) Offset() int {
	return b.offset
}

// Remaining 剩余可解包字节数
func (b *ByteVector) Remaining() int {
	return len(b.data) - b.offset
}

// Consume 跳过 count 个字节；剩余不足时失败且游标不变
func (b *ByteVector) Consume(count int) bool {
	if count < 0 || count > b.Remaining() {
		return false
	}
	b.offset += count
	return true
}

func (b *ByteVector) String() string {
	return hex.EncodeToString(b.data)
}

func sizeOf[T Integer]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Pack 以小端序追加 sizeof(T) 个字节
func Pack[T Integer](b *ByteVector, v T) bool {
	u := uint64(v)
	for i := 0; i < sizeOf[T](); i++ {
		b.data = append(b.data, byte(u>>(8*i)))
	}
	return true
}

// Unpack 读取小端序整数；剩余字节不足 sizeof(T) 时失败
func Unpack[T Integer](b *ByteVector, v *T) bool {
	n := sizeOf[T]()
	if b.Remaining() < n {
		return false
	}
	var u uint64
	for i := 0; i < n; i++ {
		u |= uint64(b.data[b.offset+i]) << (8 * i)
	}
	b.offset += n
	*v = T(u)
	return true
}

// PackBool 1 字节：0 或 1
func (b *ByteVector) PackBool(v bool) bool {
	if v {
		return Pack(b, uint8(1))
	}
	return Pack(b, uint8(0))
}

// UnpackBool 读取 1 字节，非 0 为 true
func (b *ByteVector) UnpackBool(v *bool) bool {
	var raw uint8
	if !Unpack(b, &raw) {
		return false
	}
	*v = raw != 0
	return true
}

// PackFloat32 按 IEEE-754 位模式小端序写入
func (b *ByteVector) PackFloat32(v float32) bool {
	return Pack(b, math.Float32bits(v))
}

// PackFloat64 按 IEEE-754 位模式小端序写入
func (b *ByteVector) PackFloat64(v float64) bool {
	return Pack(b, math.Float64bits(v))
}

// UnpackFloat32 读取 IEEE-754 单精度浮点
func (b *ByteVector) UnpackFloat32(v *float32) bool {
	var raw uint32
	if !Unpack(b, &raw) {
		return false
	}
	*v = math.Float32frombits(raw)
	return true
}

// UnpackFloat64 读取 IEEE-754 双精度浮点
func (b *ByteVector) UnpackFloat64(v *float64) bool {
	var raw uint64
	if !Unpack(b, &raw) {
		return false
	}
	*v = math.Float64frombits(raw)
	return true
}

// PackBytes 追加最多 maxLen 个字节（maxLen<0 不限制）
func (b *ByteVector) PackBytes(p []byte, maxLen int) bool {
	if maxLen >= 0 && len(p) > maxLen {
		p = p[:maxLen]
	}
	b.data = append(b.data, p...)
	return true
}

// PackByteVector 追加另一个缓冲区的内容（不考虑其游标）
func (b *ByteVector) PackByteVector(other *ByteVector, maxLen int) bool {
	if other == nil {
		return true
	}
	return b.PackBytes(other.data, maxLen)
}

// PackString 追加最多 maxLen 个字节的字符串内容，并追加一个 0 结束符
func (b *ByteVector) PackString(s string, maxLen int) bool {
	if maxLen >= 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	b.data = append(b.data, s...)
	b.data = append(b.data, 0)
	return true
}

// UnpackString 解包字符串
//
// count<0：读取到第一个 0 字节为止，结束符被消费且不包含在结果中；
// 没有结束符时读取剩余全部字节。
// count>=0：恰好消费 count 个字节，结果在第一个 0 字节处截断。
// count 超过剩余字节数时失败。
func (b *ByteVector) UnpackString(s *string, count int) bool {
	rest := b.data[b.offset:]
	if count < 0 {
		if i := bytes.IndexByte(rest, 0); i >= 0 {
			*s = string(rest[:i])
			b.offset += i + 1
			return true
		}
		*s = string(rest)
		b.offset = len(b.data)
		return true
	}
	if count > len(rest) {
		return false
	}
	raw := rest[:count]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	*s = string(raw)
	b.offset += count
	return true
}

// UnpackBytes 复制 count 个字节（count<0 取剩余全部）
func (b *ByteVector) UnpackBytes(p *[]byte, count int) bool {
	if count < 0 {
		count = b.Remaining()
	}
	if count > b.Remaining() {
		return false
	}
	*p = append([]byte(nil), b.data[b.offset:b.offset+count]...)
	b.offset += count
	return true
}

// bounds 返回 E 的最小/最大值
func bounds[E Integer]() (lo, hi E) {
	bits := 8 * sizeOf[E]()
	var zero E
	if zero-1 < zero {
		lo = E(uint64(1) << (bits - 1))
		hi = E(uint64(1)<<(bits-1) - 1)
		return lo, hi
	}
	return 0, ^zero
}

// saturate 将定点数钳位到 E 的表示范围（NaN 编码为 0）
func saturate[E Integer](x float64) E {
	lo, hi := bounds[E]()
	switch {
	case math.IsNaN(x):
		return 0
	case x <= float64(lo):
		return lo
	case x >= float64(hi):
		return hi
	}
	return E(x)
}

// PackScaled 定点打包：encoded = round((value+offset)*scale)
//
// 超出 E 范围时饱和为最小/最大值，不报错（有意的有损行为）。
func PackScaled[E Integer](b *ByteVector, value, scale, offset float64) bool {
	return Pack(b, saturate[E](math.Round((value+offset)*scale)))
}

// UnpackScaled 定点解包：value = raw/scale - offset
func UnpackScaled[E Integer](b *ByteVector, value *float64, scale, offset float64) bool {
	var raw E
	if !Unpack(b, &raw) {
		return false
	}
	*value = float64(raw)/scale - offset
	return true
}

// PackValue 未设置时失败且不写入
func PackValue[T Integer](b *ByteVector, v Value[T]) bool {
	if !v.set {
		return false
	}
	return Pack(b, v.data)
}

// UnpackValue 解包并将已设置标记置为解包结果
func UnpackValue[T Integer](b *ByteVector, v *Value[T]) bool {
	v.set = Unpack(b, &v.data)
	return v.set
}

// PackScaledValue 未设置时失败且不写入
func PackScaledValue[E Integer](b *ByteVector, v Value[float64], scale, offset float64) bool {
	if !v.set {
		return false
	}
	return PackScaled[E](b, v.data, scale, offset)
}

// UnpackScaledValue 定点解包到 Value，已设置标记为解包结果
func UnpackScaledValue[E Integer](b *ByteVector, v *Value[float64], scale, offset float64) bool {
	v.set = UnpackScaled[E](b, &v.data, scale, offset)
	return v.set
}

func (b *ByteVector) PackBoolValue(v Value[bool]) bool {
	if !v.set {
		return false
	}
	return b.PackBool(v.data)
}

func (b *ByteVector) UnpackBoolValue(v *Value[bool]) bool {
	v.set = b.UnpackBool(&v.data)
	return v.set
}

func (b *ByteVector) PackFloat32Value(v Value[float32]) bool {
	if !v.set {
		return false
	}
	return b.PackFloat32(v.data)
}

func (b *ByteVector) UnpackFloat32Value(v *Value[float32]) bool {
	v.set = b.UnpackFloat32(&v.data)
	return v.set
}

func (b *ByteVector) PackStringValue(v Value[string], maxLen int) bool {
	if !v.set {
		return false
	}
	return b.PackString(v.data, maxLen)
}

func (b *ByteVector) UnpackStringValue(v *Value[string], count int) bool {
	v.set = b.UnpackString(&v.data, count)
	return v.set
}

func (b *ByteVector) PackBytesValue(v Value[[]byte], maxLen int) bool {
	if !v.set {
		return false
	}
	return b.PackBytes(v.data, maxLen)
}

func (b *ByteVector) UnpackBytesValue(v *Value[[]byte], count int) bool {
	v.set = b.UnpackBytes(&v.data, count)
	return v.set
}

// Packer 可写入 ByteVector 的结构
type Packer interface {
	PackInto(b *ByteVector) bool
}

// Unpacker 可从 ByteVector 读取的结构
type Unpacker interface {
	UnpackFrom(b *ByteVector) bool
}
