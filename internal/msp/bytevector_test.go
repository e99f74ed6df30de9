package msp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackIntegers(t *testing.T) {
	b := NewByteVector(nil)
	require.True(t, Pack(b, int8(-5)))
	require.True(t, Pack(b, uint8(200)))
	require.True(t, Pack(b, int16(-12345)))
	require.True(t, Pack(b, uint16(54321)))
	require.True(t, Pack(b, int32(math.MinInt32)))
	require.True(t, Pack(b, uint32(0xdeadbeef)))
	require.True(t, Pack(b, int64(-1)))
	require.True(t, Pack(b, uint64(math.MaxUint64)))
	assert.Equal(t, 1+1+2+2+4+4+8+8, b.Len())

	var (
		i8  int8
		u8  uint8
		i16 int16
		u16 uint16
		i32 int32
		u32 uint32
		i64 int64
		u64 uint64
	)
	require.True(t, Unpack(b, &i8))
	require.True(t, Unpack(b, &u8))
	require.True(t, Unpack(b, &i16))
	require.True(t, Unpack(b, &u16))
	require.True(t, Unpack(b, &i32))
	require.True(t, Unpack(b, &u32))
	require.True(t, Unpack(b, &i64))
	require.True(t, Unpack(b, &u64))

	assert.Equal(t, int8(-5), i8)
	assert.Equal(t, uint8(200), u8)
	assert.Equal(t, int16(-12345), i16)
	assert.Equal(t, uint16(54321), u16)
	assert.Equal(t, int32(math.MinInt32), i32)
	assert.Equal(t, uint32(0xdeadbeef), u32)
	assert.Equal(t, int64(-1), i64)
	assert.Equal(t, uint64(math.MaxUint64), u64)
	assert.Equal(t, 0, b.Remaining())
}

func TestPackLittleEndian(t *testing.T) {
	b := NewByteVector(nil)
	Pack(b, uint32(0x01020304))
	Pack(b, int16(-2))
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01, 0xfe, 0xff}, b.Bytes())
}

func TestUnpackInsufficientData(t *testing.T) {
	b := NewByteVector([]byte{0x01, 0x02, 0x03})

	out := uint32(0xcafebabe)
	assert.False(t, Unpack(b, &out))
	assert.Equal(t, uint32(0xcafebabe), out, "失败时输出不变")
	assert.Equal(t, 0, b.Offset(), "失败时游标不变")

	var u16 uint16
	require.True(t, Unpack(b, &u16))
	assert.Equal(t, uint16(0x0201), u16)
	assert.Equal(t, 2, b.Offset())

	assert.False(t, Unpack(b, &u16))
	assert.Equal(t, uint16(0x0201), u16)
	assert.Equal(t, 2, b.Offset())

	var f float32
	assert.False(t, b.UnpackFloat32(&f))
	assert.False(t, b.Consume(2))
	assert.Equal(t, 2, b.Offset())
	assert.True(t, b.Consume(1))
	assert.Equal(t, 3, b.Offset())
	assert.Equal(t, 0, b.Remaining())
}

func TestCursorMonotonic(t *testing.T) {
	b := NewByteVector([]byte{1, 2, 3, 4, 5, 6, 7})
	last := b.Offset()
	steps := []func() bool{
		func() bool { var v uint16; return Unpack(b, &v) },
		func() bool { var v uint64; return Unpack(b, &v) },
		func() bool { var v uint8; return Unpack(b, &v) },
		func() bool { var v uint32; return Unpack(b, &v) },
		func() bool { var v uint32; return Unpack(b, &v) },
		func() bool { var v uint16; return Unpack(b, &v) },
		func() bool { var s string; return b.UnpackString(&s, 5) },
	}
	for _, step := range steps {
		before := b.Offset()
		ok := step()
		assert.GreaterOrEqual(t, b.Offset(), last)
		assert.LessOrEqual(t, b.Offset(), b.Len())
		if !ok {
			assert.Equal(t, before, b.Offset())
		}
		last = b.Offset()
	}
	assert.Equal(t, 7, b.Offset())
}

func TestBoolAndFloat(t *testing.T) {
	b := NewByteVector(nil)
	b.PackBool(true)
	b.PackBool(false)
	b.PackFloat32(3.5)
	b.PackFloat64(-0.125)
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x60, 0x40}, b.Bytes()[:6])

	var t1, t2 bool
	var f32 float32
	var f64 float64
	require.True(t, b.UnpackBool(&t1))
	require.True(t, b.UnpackBool(&t2))
	require.True(t, b.UnpackFloat32(&f32))
	require.True(t, b.UnpackFloat64(&f64))
	assert.True(t, t1)
	assert.False(t, t2)
	assert.Equal(t, float32(3.5), f32)
	assert.Equal(t, -0.125, f64)

	nz := NewByteVector([]byte{0x7f})
	var v bool
	require.True(t, nz.UnpackBool(&v))
	assert.True(t, v, "非 0 即 true")
}

func TestScaledRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		scale  float64
		offset float64
		pack   func(b *ByteVector, v, scale, offset float64) bool
		unpack func(b *ByteVector, v *float64, scale, offset float64) bool
	}{
		{"int16 ×10", 12.34, 10, 0, PackScaled[int16], UnpackScaled[int16]},
		{"int16 ×10 负数", -179.96, 10, 0, PackScaled[int16], UnpackScaled[int16]},
		{"int32 ×100", 1234.567, 100, 0, PackScaled[int32], UnpackScaled[int32]},
		{"uint8 ×10", 16.84, 10, 0, PackScaled[uint8], UnpackScaled[uint8]},
		{"int32 ×1e7", 47.3977419, 1e7, 0, PackScaled[int32], UnpackScaled[int32]},
		{"uint16 带偏移", -10, 1, 20, PackScaled[uint16], UnpackScaled[uint16]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewByteVector(nil)
			require.True(t, tt.pack(b, tt.value, tt.scale, tt.offset))
			var got float64
			require.True(t, tt.unpack(b, &got, tt.scale, tt.offset))
			assert.LessOrEqual(t, math.Abs(got-tt.value), 1/tt.scale)
		})
	}
}

func TestScaledSaturation(t *testing.T) {
	tests := []struct {
		name string
		pack func(b *ByteVector) bool
		want []byte
	}{
		{"int16 上溢", func(b *ByteVector) bool { return PackScaled[int16](b, 5000, 10, 0) }, []byte{0xff, 0x7f}},
		{"int16 下溢", func(b *ByteVector) bool { return PackScaled[int16](b, -5000, 10, 0) }, []byte{0x00, 0x80}},
		{"uint8 负数", func(b *ByteVector) bool { return PackScaled[uint8](b, -1, 10, 0) }, []byte{0x00}},
		{"uint8 上溢", func(b *ByteVector) bool { return PackScaled[uint8](b, 30, 10, 0) }, []byte{0xff}},
		{"int8 下溢", func(b *ByteVector) bool { return PackScaled[int8](b, -200, 1, 0) }, []byte{0x80}},
		{"NaN 编码为 0", func(b *ByteVector) bool { return PackScaled[int16](b, math.NaN(), 10, 0) }, []byte{0x00, 0x00}},
		{"+Inf 饱和", func(b *ByteVector) bool { return PackScaled[uint16](b, math.Inf(1), 1, 0) }, []byte{0xff, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewByteVector(nil)
			assert.True(t, tt.pack(b), "饱和不报错")
			assert.Equal(t, tt.want, b.Bytes())
		})
	}

	b := NewByteVector(nil)
	PackScaled[int16](b, 5000, 10, 0)
	var got float64
	require.True(t, UnpackScaled[int16](b, &got, 10, 0))
	assert.InDelta(t, 3276.7, got, 1e-9)
}

func TestScaledRounding(t *testing.T) {
	b := NewByteVector(nil)
	PackScaled[int16](b, 0.25, 10, 0)
	PackScaled[int16](b, -0.26, 10, 0)
	var a, c int16
	require.True(t, Unpack(b, &a))
	require.True(t, Unpack(b, &c))
	assert.Equal(t, int16(3), a, "四舍五入远离 0")
	assert.Equal(t, int16(-3), c)
}

func TestStrings(t *testing.T) {
	t.Run("打包追加结束符", func(t *testing.T) {
		b := NewByteVector(nil)
		b.PackString("INAV", Unbounded)
		assert.Equal(t, []byte("INAV\x00"), b.Bytes())

		b = NewByteVector(nil)
		b.PackString("INAV", 2)
		assert.Equal(t, []byte("IN\x00"), b.Bytes())
	})

	t.Run("不限长度读取消费结束符", func(t *testing.T) {
		b := NewByteVector(nil)
		b.PackString("INAV", Unbounded)
		b.PackString("BTFL", Unbounded)
		var s1, s2 string
		require.True(t, b.UnpackString(&s1, Unbounded))
		require.True(t, b.UnpackString(&s2, Unbounded))
		assert.Equal(t, "INAV", s1)
		assert.Equal(t, "BTFL", s2)
		assert.Equal(t, 0, b.Remaining())
	})

	t.Run("无结束符读取剩余", func(t *testing.T) {
		b := NewByteVector([]byte("abc"))
		var s string
		require.True(t, b.UnpackString(&s, Unbounded))
		assert.Equal(t, "abc", s)
		assert.Equal(t, 3, b.Offset())
	})

	t.Run("定长读取在 0 处截断", func(t *testing.T) {
		b := NewByteVector([]byte{'A', 'B', 0, 0, 'C'})
		var s string
		require.True(t, b.UnpackString(&s, 4))
		assert.Equal(t, "AB", s)
		assert.Equal(t, 4, b.Offset())
	})

	t.Run("长度超过剩余失败", func(t *testing.T) {
		b := NewByteVector([]byte("ab"))
		s := "keep"
		assert.False(t, b.UnpackString(&s, 3))
		assert.Equal(t, "keep", s)
		assert.Equal(t, 0, b.Offset())
	})
}

func TestBytes(t *testing.T) {
	b := NewByteVector(nil)
	b.PackBytes([]byte{1, 2, 3, 4}, 3)
	inner := NewByteVector([]byte{9, 8})
	b.PackByteVector(inner, Unbounded)
	assert.Equal(t, []byte{1, 2, 3, 9, 8}, b.Bytes())

	var p []byte
	require.True(t, b.UnpackBytes(&p, 2))
	assert.Equal(t, []byte{1, 2}, p)
	assert.False(t, b.UnpackBytes(&p, 4))
	assert.Equal(t, []byte{1, 2}, p)
	require.True(t, b.UnpackBytes(&p, Unbounded))
	assert.Equal(t, []byte{3, 9, 8}, p)
}

func TestNewByteVectorCopies(t *testing.T) {
	src := []byte{1, 2}
	b := NewByteVector(src)
	src[0] = 0xff
	assert.Equal(t, []byte{1, 2}, b.Bytes())
	assert.Equal(t, "0102", b.String())
}

func TestValuePackUnpack(t *testing.T) {
	t.Run("未设置时打包失败且不写入", func(t *testing.T) {
		b := NewByteVector(nil)
		var v Value[uint16]
		v.Assign(7)
		assert.False(t, PackValue(b, v))
		assert.False(t, PackScaledValue[int16](b, NewValue(1.5), 10, 0))
		assert.False(t, b.PackStringValue(Value[string]{}, Unbounded))
		assert.False(t, b.PackBytesValue(Value[[]byte]{}, Unbounded))
		assert.Equal(t, 0, b.Len())
	})

	t.Run("解包结果决定已设置标记", func(t *testing.T) {
		b := NewByteVector(nil)
		var src Value[uint16]
		src.Set(513)
		require.True(t, PackValue(b, src))

		var dst Value[uint16]
		require.True(t, UnpackValue(b, &dst))
		got, ok := dst.Get()
		assert.True(t, ok)
		assert.Equal(t, uint16(513), got)

		assert.False(t, UnpackValue(b, &dst))
		assert.False(t, dst.IsSet())
		assert.Equal(t, uint16(513), dst.Data())
	})

	t.Run("定点值", func(t *testing.T) {
		b := NewByteVector(nil)
		var src Value[float64]
		src.Set(-12.5)
		require.True(t, PackScaledValue[int16](b, src, 10, 0))
		var dst Value[float64]
		require.True(t, UnpackScaledValue[int16](b, &dst, 10, 0))
		assert.InDelta(t, -12.5, dst.Data(), 1e-9)
	})

	t.Run("布尔与浮点值", func(t *testing.T) {
		b := NewByteVector(nil)
		var flag Value[bool]
		flag.Set(true)
		var f Value[float32]
		f.Set(1.25)
		require.True(t, b.PackBoolValue(flag))
		require.True(t, b.PackFloat32Value(f))

		var flag2 Value[bool]
		var f2 Value[float32]
		require.True(t, b.UnpackBoolValue(&flag2))
		require.True(t, b.UnpackFloat32Value(&f2))
		assert.True(t, flag2.Data())
		assert.Equal(t, float32(1.25), f2.Data())
	})
}
