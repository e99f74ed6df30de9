package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tasifacuj/mission-control/internal/msp"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDecodeDescribe(t *testing.T) {
	out, err := run(t, "decode", "MSP_ATTITUDE", "83ff2c010e01")
	require.NoError(t, err)
	assert.Contains(t, out, "#Attitude:")
	assert.Contains(t, out, "Roll: -12.5 deg")
	assert.Contains(t, out, "Yaw: 270 deg")
}

func TestDecodeJSON(t *testing.T) {
	out, err := run(t, "decode", "attitude", "83 ff 2c 01 0e 01", "-o", "json")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "MSP_ATTITUDE", res["message"])
	assert.EqualValues(t, 108, res["id"])
	assert.Equal(t, "INAV", res["firmware"])
	assert.Equal(t, true, res["decoded"])
	data := res["data"].(map[string]any)
	assert.InDelta(t, 30.0, data["pitch_deg"], 1e-9)
	assert.NotContains(t, res, "imu")
}

func TestDecodeImuPhysicalUnits(t *testing.T) {
	payload := "0002" + "0000" + "0000" + "000000000000" + "000000000000"

	t.Run("yaml 输出包含物理单位", func(t *testing.T) {
		out, err := run(t, "decode", "MSP_RAW_IMU", payload, "--imu", "-o", "yaml")
		require.NoError(t, err)

		var res struct {
			Imu struct {
				Acc []float64 `yaml:"acc_mps2"`
			} `yaml:"imu"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(out), &res))
		require.Len(t, res.Imu.Acc, 3)
		assert.InDelta(t, 9.80665, res.Imu.Acc[0], 1e-9)
	})

	t.Run("自定义校准常量", func(t *testing.T) {
		out, err := run(t, "decode", "102", payload, "--imu", "--acc-one-g", "256")
		require.NoError(t, err)
		assert.Contains(t, out, "#Imu:")
		assert.Contains(t, out, "19.6133")
	})
}

func TestDecodeErrors(t *testing.T) {
	t.Run("载荷不足时输出部分结果并返回错误", func(t *testing.T) {
		out, err := run(t, "decode", "MSP_ATTITUDE", "83ff", "-o", "json")
		require.ErrorIs(t, err, msp.ErrDecode)
		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, false, res["decoded"])
	})

	t.Run("未知消息", func(t *testing.T) {
		_, err := run(t, "decode", "MSP_NOPE", "00")
		assert.ErrorIs(t, err, msp.ErrUnknownID)
	})

	t.Run("未实现的消息", func(t *testing.T) {
		_, err := run(t, "decode", "MSP_BOXNAMES", "00")
		assert.ErrorIs(t, err, msp.ErrUnsupported)
	})

	t.Run("非法十六进制", func(t *testing.T) {
		_, err := run(t, "decode", "MSP_ATTITUDE", "zz")
		assert.ErrorContains(t, err, "invalid hex payload")
	})

	t.Run("未知输出格式", func(t *testing.T) {
		_, err := run(t, "decode", "MSP_ATTITUDE", "83ff2c010e01", "-o", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})

	t.Run("未知固件", func(t *testing.T) {
		_, err := run(t, "--firmware", "PX4", "decode", "MSP_ATTITUDE", "83ff2c010e01")
		assert.Error(t, err)
	})

	t.Run("参数个数错误", func(t *testing.T) {
		_, err := run(t, "decode", "MSP_ATTITUDE")
		assert.Error(t, err)
	})
}

func TestIDs(t *testing.T) {
	out, err := run(t, "ids")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	for _, id := range msp.Supported() {
		assert.Contains(t, out, id.String())
	}
	assert.Contains(t, out, "v2", "MSP2_INAV_STATUS 属于 v2")
}

func TestParseHex(t *testing.T) {
	for _, in := range []string{"0a0B", "0x0a0b", "0a:0b", " 0a 0b "} {
		b, err := parseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0x0a, 0x0b}, b, in)
	}
}
