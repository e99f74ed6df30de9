package msp

import (
	"fmt"
	"strings"
)

// FirmwareVariant 飞控固件分支
//
// 每条消息都携带该标记，记录实例期望的字段布局/缩放常量所属分支。
// 当前的解码逻辑不按分支区分。
type FirmwareVariant int

const (
	FirmwareNone FirmwareVariant = iota // 未指定
	FirmwareMWII                        // MultiWii
	FirmwareBAFL                        // BetaFlight
	FirmwareBTFL                        // ButterFlight
	FirmwareCLFL                        // CleanFlight
	FirmwareINAV                        // INAV
	FirmwareRCFL                        // RaceFlight
)

var firmwareCodes = [...]string{
	FirmwareNone: "NONE",
	FirmwareMWII: "MWII",
	FirmwareBAFL: "BAFL",
	FirmwareBTFL: "BTFL",
	FirmwareCLFL: "CLFL",
	FirmwareINAV: "INAV",
	FirmwareRCFL: "RCFL",
}

var firmwareNames = [...]string{
	FirmwareNone: "not specified",
	FirmwareMWII: "MultiWii",
	FirmwareBAFL: "BetaFlight",
	FirmwareBTFL: "ButterFlight",
	FirmwareCLFL: "CleanFlight",
	FirmwareINAV: "INAV",
	FirmwareRCFL: "RaceFlight",
}

// String 返回 4 字符分支代码
func (v FirmwareVariant) String() string {
	if v < 0 || int(v) >= len(firmwareCodes) {
		return fmt.Sprintf("FirmwareVariant(%d)", int(v))
	}
	return firmwareCodes[v]
}

// Description 分支全称
func (v FirmwareVariant) Description() string {
	if v < 0 || int(v) >= len(firmwareNames) {
		return "unknown"
	}
	return firmwareNames[v]
}

// ParseFirmwareVariant 解析分支代码或全称（大小写不敏感），空串为 NONE
func ParseFirmwareVariant(s string) (FirmwareVariant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FirmwareNone, nil
	}
	for i, code := range firmwareCodes {
		if strings.EqualFold(s, code) || strings.EqualFold(s, firmwareNames[i]) {
			return FirmwareVariant(i), nil
		}
	}
	return FirmwareNone, fmt.Errorf("unknown firmware variant %q", s)
}

func (v FirmwareVariant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *FirmwareVariant) UnmarshalText(b []byte) error {
	parsed, err := ParseFirmwareVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
