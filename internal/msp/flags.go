package msp

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Set 无序集合；渲染时按升序输出以保证确定性
type Set[T cmp.Ordered] map[T]struct{}

// Has 是否包含 v
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Len 元素个数
func (s Set[T]) Len() int {
	return len(s)
}

// Sorted 升序列表
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Join 按升序拼接元素的字符串形式
func (s Set[T]) Join(sep string) string {
	parts := make([]string, 0, len(s))
	for _, v := range s.Sorted() {
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, sep)
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// BitLabel 位号到标签的映射项
type BitLabel[T cmp.Ordered] struct {
	Bit   uint
	Label T
}

// DecodeBitmask 按表（升序位号）将位掩码解码为标签集合
func DecodeBitmask[T cmp.Ordered](mask uint64, table []BitLabel[T]) Set[T] {
	out := make(Set[T])
	for _, e := range table {
		if mask&(uint64(1)<<e.Bit) != 0 {
			out[e.Label] = struct{}{}
		}
	}
	return out
}

// Sensor 飞控上报的传感器
type Sensor int

const (
	SensorAccelerometer Sensor = iota
	SensorBarometer
	SensorMagnetometer
	SensorGPS
	SensorSonar
	SensorOpticalFlow
	SensorPitot
	SensorGeneralHealth
)

var sensorNames = [...]string{
	SensorAccelerometer: "Accelerometer",
	SensorBarometer:     "Barometer",
	SensorMagnetometer:  "Magnetometer",
	SensorGPS:           "GPS",
	SensorSonar:         "Sonar",
	SensorOpticalFlow:   "OpticalFlow",
	SensorPitot:         "Pitot",
	SensorGeneralHealth: "GeneralHealth",
}

func (s Sensor) String() string {
	if s < 0 || int(s) >= len(sensorNames) {
		return fmt.Sprintf("Sensor(%d)", int(s))
	}
	return sensorNames[s]
}

func (s Sensor) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SensorBits 16 位传感器掩码的位定义
var SensorBits = []BitLabel[Sensor]{
	{Bit: 0, Label: SensorAccelerometer},
	{Bit: 1, Label: SensorBarometer},
	{Bit: 2, Label: SensorMagnetometer},
	{Bit: 3, Label: SensorGPS},
	{Bit: 4, Label: SensorSonar},
	{Bit: 5, Label: SensorOpticalFlow},
	{Bit: 6, Label: SensorPitot},
	{Bit: 15, Label: SensorGeneralHealth},
}

// boxBits 32 位模式掩码：每个置位对应一个 box id（0-31）
var boxBits = func() []BitLabel[int] {
	t := make([]BitLabel[int], 32)
	for i := range t {
		t[i] = BitLabel[int]{Bit: uint(i), Label: i}
	}
	return t
}()

// DecodeBoxModes 32 位模式掩码解码为激活的 box id 集合
func DecodeBoxModes(mask uint32) Set[int] {
	return DecodeBitmask(uint64(mask), boxBits)
}

// ArmingFlag 解锁状态/禁止解锁原因（取值即位掩码）
type ArmingFlag uint32

const (
	Armed                                    ArmingFlag = 1 << 2
	WasEverArmed                             ArmingFlag = 1 << 3
	ArmingDisabledFailsafeSystem             ArmingFlag = 1 << 7
	ArmingDisabledNotLevel                   ArmingFlag = 1 << 8
	ArmingDisabledSensorsCalibrating         ArmingFlag = 1 << 9
	ArmingDisabledSystemOverloaded           ArmingFlag = 1 << 10
	ArmingDisabledNavigationUnsafe           ArmingFlag = 1 << 11
	ArmingDisabledCompassNotCalibrated       ArmingFlag = 1 << 12
	ArmingDisabledAccelerometerNotCalibrated ArmingFlag = 1 << 13
	ArmingDisabledArmSwitch                  ArmingFlag = 1 << 14
	ArmingDisabledHardwareFailure            ArmingFlag = 1 << 15
	ArmingDisabledBoxFailsafe                ArmingFlag = 1 << 16
	ArmingDisabledBoxKillswitch              ArmingFlag = 1 << 17
	ArmingDisabledRCLink                     ArmingFlag = 1 << 18
	ArmingDisabledThrottle                   ArmingFlag = 1 << 19
	ArmingDisabledCLI                        ArmingFlag = 1 << 20
	ArmingDisabledCMSMenu                    ArmingFlag = 1 << 21
	ArmingDisabledOSDMenu                    ArmingFlag = 1 << 22
	ArmingDisabledRollPitchNotCentered       ArmingFlag = 1 << 23
	ArmingDisabledServoAutotrim              ArmingFlag = 1 << 24
	ArmingDisabledOOM                        ArmingFlag = 1 << 25
	ArmingDisabledInvalidSetting             ArmingFlag = 1 << 26
)

// ArmingDisabledAllFlags 所有禁止解锁原因
const ArmingDisabledAllFlags = ArmingDisabledFailsafeSystem | ArmingDisabledNotLevel |
	ArmingDisabledSensorsCalibrating | ArmingDisabledSystemOverloaded |
	ArmingDisabledNavigationUnsafe | ArmingDisabledCompassNotCalibrated |
	ArmingDisabledAccelerometerNotCalibrated | ArmingDisabledArmSwitch |
	ArmingDisabledHardwareFailure | ArmingDisabledBoxFailsafe |
	ArmingDisabledBoxKillswitch | ArmingDisabledRCLink | ArmingDisabledThrottle |
	ArmingDisabledCLI | ArmingDisabledCMSMenu | ArmingDisabledOSDMenu |
	ArmingDisabledRollPitchNotCentered | ArmingDisabledServoAutotrim |
	ArmingDisabledOOM | ArmingDisabledInvalidSetting

var armingFlagNames = map[ArmingFlag]string{
	Armed:                                    "ARMED",
	WasEverArmed:                             "WAS_EVER_ARMED",
	ArmingDisabledFailsafeSystem:             "ARMING_DISABLED_FAILSAFE_SYSTEM",
	ArmingDisabledNotLevel:                   "ARMING_DISABLED_NOT_LEVEL",
	ArmingDisabledSensorsCalibrating:         "ARMING_DISABLED_SENSORS_CALIBRATING",
	ArmingDisabledSystemOverloaded:           "ARMING_DISABLED_SYSTEM_OVERLOADED",
	ArmingDisabledNavigationUnsafe:           "ARMING_DISABLED_NAVIGATION_UNSAFE",
	ArmingDisabledCompassNotCalibrated:       "ARMING_DISABLED_COMPASS_NOT_CALIBRATED",
	ArmingDisabledAccelerometerNotCalibrated: "ARMING_DISABLED_ACCELEROMETER_NOT_CALIBRATED",
	ArmingDisabledArmSwitch:                  "ARMING_DISABLED_ARM_SWITCH",
	ArmingDisabledHardwareFailure:            "ARMING_DISABLED_HARDWARE_FAILURE",
	ArmingDisabledBoxFailsafe:                "ARMING_DISABLED_BOXFAILSAFE",
	ArmingDisabledBoxKillswitch:              "ARMING_DISABLED_BOXKILLSWITCH",
	ArmingDisabledRCLink:                     "ARMING_DISABLED_RC_LINK",
	ArmingDisabledThrottle:                   "ARMING_DISABLED_THROTTLE",
	ArmingDisabledCLI:                        "ARMING_DISABLED_CLI",
	ArmingDisabledCMSMenu:                    "ARMING_DISABLED_CMS_MENU",
	ArmingDisabledOSDMenu:                    "ARMING_DISABLED_OSD_MENU",
	ArmingDisabledRollPitchNotCentered:       "ARMING_DISABLED_ROLLPITCH_NOT_CENTERED",
	ArmingDisabledServoAutotrim:              "ARMING_DISABLED_SERVO_AUTOTRIM",
	ArmingDisabledOOM:                        "ARMING_DISABLED_OOM",
	ArmingDisabledInvalidSetting:             "ARMING_DISABLED_INVALID_SETTING",
}

func (f ArmingFlag) String() string {
	if name, ok := armingFlagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("ArmingFlag(0x%08x)", uint32(f))
}

func (f ArmingFlag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// armingBits 升序位表，由 armingFlagNames 生成
var armingBits = func() []BitLabel[ArmingFlag] {
	t := make([]BitLabel[ArmingFlag], 0, len(armingFlagNames))
	for bit := uint(0); bit < 32; bit++ {
		f := ArmingFlag(1) << bit
		if _, ok := armingFlagNames[f]; ok {
			t = append(t, BitLabel[ArmingFlag]{Bit: bit, Label: f})
		}
	}
	return t
}()

// DecodeArmingFlags 解锁标志掩码解码为集合（未定义的位被忽略）
func DecodeArmingFlags(mask uint32) Set[ArmingFlag] {
	return DecodeBitmask(uint64(mask), armingBits)
}

// ArmingFlagsString 按升序位号输出已置位的标志名，以空格分隔
func ArmingFlagsString(mask uint32) string {
	return DecodeArmingFlags(mask).Join(" ")
}
