package msp

import (
	"fmt"
	"strconv"
	"strings"
)

// ID MSP 命令/响应标识
//
// 小于 256 为 MSPv1 命令空间，0x1000 及以上为 MSPv2 扩展空间。
// 不同固件分支（MultiWii、BetaFlight、ButterFlight、CleanFlight、INAV、RaceFlight）
// 共享基础协议，但支持的消息集合不同。
type ID uint16

const (
	IDAPIVersion                  ID = 1
	IDFCVariant                   ID = 2
	IDFCVersion                   ID = 3
	IDBoardInfo                   ID = 4
	IDBuildInfo                   ID = 5
	IDInavPID                     ID = 6
	IDSetInavPID                  ID = 7
	IDName                        ID = 10 // out message
	IDSetName                     ID = 11 // in message
	IDNavPosHold                  ID = 12 // only in iNav
	IDSetNavPosHold               ID = 13 // only in iNav
	IDCalibrationData             ID = 14
	IDSetCalibrationData          ID = 15
	IDPositionEstimationConfig    ID = 16
	IDSetPositionEstimationConfig ID = 17
	IDWPMissionLoad               ID = 18 // Load mission from NVRAM
	IDWPMissionSave               ID = 19 // Save mission to NVRAM
	IDWPGetInfo                   ID = 20
	IDRTHAndLandConfig            ID = 21
	IDSetRTHAndLandConfig         ID = 22
	IDFWConfig                    ID = 23
	IDSetFWConfig                 ID = 24
	IDBatteryConfig               ID = 32 // not available in iNav
	IDSetBatteryConfig            ID = 33 // not available in iNav
	IDModeRanges                  ID = 34
	IDSetModeRange                ID = 35
	IDFeature                     ID = 36
	IDSetFeature                  ID = 37
	IDBoardAlignment              ID = 38
	IDSetBoardAlignment           ID = 39
	IDCurrentMeterConfig          ID = 40
	IDSetCurrentMeterConfig       ID = 41
	IDMixer                       ID = 42
	IDSetMixer                    ID = 43
	IDRXConfig                    ID = 44
	IDSetRXConfig                 ID = 45
	IDLEDColors                   ID = 46
	IDSetLEDColors                ID = 47
	IDLEDStripConfig              ID = 48
	IDSetLEDStripConfig           ID = 49
	IDRSSIConfig                  ID = 50
	IDSetRSSIConfig               ID = 51
	IDAdjustmentRanges            ID = 52
	IDSetAdjustmentRange          ID = 53
	IDCFSerialConfig              ID = 54
	IDSetCFSerialConfig           ID = 55
	IDVoltageMeterConfig          ID = 56
	IDSetVoltageMeterConfig       ID = 57
	IDSonarAltitude               ID = 58
	IDPIDController               ID = 59
	IDSetPIDController            ID = 60
	IDArmingConfig                ID = 61
	IDSetArmingConfig             ID = 62
	IDRXMap                       ID = 64
	IDSetRXMap                    ID = 65
	IDBFConfig                    ID = 66 // deprecated, out message
	IDSetBFConfig                 ID = 67 // deprecated, in message
	IDReboot                      ID = 68
	IDBFBuildInfo                 ID = 69 // deprecated, iNav
	IDDataflashSummary            ID = 70
	IDDataflashRead               ID = 71
	IDDataflashErase              ID = 72
	IDLoopTime                    ID = 73 // deprecated, iNav
	IDSetLoopTime                 ID = 74 // deprecated, iNav
	IDFailsafeConfig              ID = 75
	IDSetFailsafeConfig           ID = 76
	IDRXFailConfig                ID = 77 // deprecated, iNav
	IDSetRXFailConfig             ID = 78 // deprecated, iNav
	IDSDCardSummary               ID = 79
	IDBlackboxConfig              ID = 80
	IDSetBlackboxConfig           ID = 81
	IDTransponderConfig           ID = 82
	IDSetTransponderConfig        ID = 83
	IDOSDConfig                   ID = 84 // out message, betaflight
	IDSetOSDConfig                ID = 85 // in message, betaflight
	IDOSDCharRead                 ID = 86 // out message, betaflight
	IDOSDCharWrite                ID = 87
	IDVTXConfig                   ID = 88
	IDSetVTXConfig                ID = 89
	IDAdvancedConfig              ID = 90
	IDSetAdvancedConfig           ID = 91
	IDFilterConfig                ID = 92
	IDSetFilterConfig             ID = 93
	IDPIDAdvanced                 ID = 94
	IDSetPIDAdvanced              ID = 95
	IDSensorConfig                ID = 96
	IDSetSensorConfig             ID = 97
	IDCameraControl               ID = 98  // MSP_SPECIAL_PARAMETERS
	IDSetArmingDisabled           ID = 99  // MSP_SET_SPECIAL_PARAMETERS
	IDIdent                       ID = 100 // deprecated
	IDStatus                      ID = 101
	IDRawIMU                      ID = 102
	IDServo                       ID = 103
	IDMotor                       ID = 104
	IDRC                          ID = 105
	IDRawGPS                      ID = 106
	IDCompGPS                     ID = 107
	IDAttitude                    ID = 108
	IDAltitude                    ID = 109
	IDAnalog                      ID = 110
	IDRCTuning                    ID = 111
	IDPID                         ID = 112
	IDActiveBoxes                 ID = 113 // deprecated, iNav
	IDMisc                        ID = 114 // deprecated, iNav
	IDMotorPins                   ID = 115 // deprecated, iNav
	IDBoxNames                    ID = 116
	IDPIDNames                    ID = 117
	IDWP                          ID = 118
	IDBoxIDs                      ID = 119
	IDServoConf                   ID = 120
	IDNavStatus                   ID = 121
	IDNavConfig                   ID = 122
	IDMotor3DConfig               ID = 124
	IDRCDeadband                  ID = 125
	IDSensorAlignment             ID = 126
	IDLEDStripModeColor           ID = 127
	IDVoltageMeters               ID = 128 // not present in iNav
	IDCurrentMeters               ID = 129 // not present in iNav
	IDBatteryState                ID = 130 // not present in iNav
	IDMotorConfig                 ID = 131 // out message
	IDGPSConfig                   ID = 132 // out message
	IDCompassConfig               ID = 133 // out message
	IDESCSensorData               ID = 134 // out message
	IDStatusEx                    ID = 150
	IDSensorStatus                ID = 151 // only iNav
	IDUID                         ID = 160
	IDGPSSVInfo                   ID = 164
	IDGPSStatistics               ID = 166
	IDOSDVideoConfig              ID = 180
	IDSetOSDVideoConfig           ID = 181
	IDDisplayport                 ID = 182
	IDCopyProfile                 ID = 183 // not in iNav
	IDBeeperConfig                ID = 184 // not in iNav
	IDSetBeeperConfig             ID = 185 // not in iNav
	IDSetTXInfo                   ID = 186 // in message
	IDTXInfo                      ID = 187 // out message
	IDSetRawRC                    ID = 200
	IDSetRawGPS                   ID = 201
	IDSetPID                      ID = 202
	IDSetBox                      ID = 203 // deprecated
	IDSetRCTuning                 ID = 204
	IDAccCalibration              ID = 205
	IDMagCalibration              ID = 206
	IDSetMisc                     ID = 207 // deprecated
	IDResetConf                   ID = 208
	IDSetWP                       ID = 209
	IDSelectSetting               ID = 210
	IDSetHeading                  ID = 211
	IDSetServoConf                ID = 212
	IDSetMotor                    ID = 214
	IDSetNavConfig                ID = 215
	IDSetMotor3DConf              ID = 217
	IDSetRCDeadband               ID = 218
	IDSetResetCurrPID             ID = 219
	IDSetSensorAlignment          ID = 220
	IDSetLEDStripModeColor        ID = 221
	IDSetMotorConfig              ID = 222 // out message
	IDSetGPSConfig                ID = 223 // out message
	IDSetCompassConfig            ID = 224 // out message
	IDSetAccTrim                  ID = 239 // in message
	IDAccTrim                     ID = 240 // out message
	IDServoMixRules               ID = 241 // out message
	IDSetServoMixRule             ID = 242 // in message
	IDPassthroughSerial           ID = 244 // not used in CF, BF, iNav
	IDSet4WayIF                   ID = 245 // in message
	IDSetRTC                      ID = 246 // in message
	IDRTC                         ID = 247 // out message
	IDEepromWrite                 ID = 250 // in message
	IDReserve1                    ID = 251 // reserved for system usage
	IDReserve2                    ID = 252 // reserved for system usage
	IDDebugMsg                    ID = 253 // out message
	IDDebug                       ID = 254 // out message
	IDV2Frame                     ID = 255 // MSPv2 over MSPv1

	// MSPv2
	IDCommonTZ             ID = 0x1001 // out message, TZ offset
	IDCommonSetTZ          ID = 0x1002 // in message, sets the TZ offset
	IDCommonSetting        ID = 0x1003 // in/out message, returns setting
	IDCommonSetSetting     ID = 0x1004 // in message, sets a setting value
	IDCommonMotorMixer     ID = 0x1005
	IDCommonSetMotorMixer  ID = 0x1006
	IDInavStatus           ID = 0x2000
	IDInavOpticalFlow      ID = 0x2001
	IDInavAnalog           ID = 0x2002
	IDInavMisc             ID = 0x2003
	IDInavSetMisc          ID = 0x2004
	IDInavBatteryConfig    ID = 0x2005
	IDInavSetBatteryConfig ID = 0x2006
	IDInavRateProfile      ID = 0x2007
	IDInavSetRateProfile   ID = 0x2008
	IDInavAirSpeed         ID = 0x2009
)

// v2Threshold 起始的标识只能通过 MSPv2 帧传输
const v2Threshold = 0x1000

var idNames = map[ID]string{
	IDAPIVersion:                  "MSP_API_VERSION",
	IDFCVariant:                   "MSP_FC_VARIANT",
	IDFCVersion:                   "MSP_FC_VERSION",
	IDBoardInfo:                   "MSP_BOARD_INFO",
	IDBuildInfo:                   "MSP_BUILD_INFO",
	IDInavPID:                     "MSP_INAV_PID",
	IDSetInavPID:                  "MSP_SET_INAV_PID",
	IDName:                        "MSP_NAME",
	IDSetName:                     "MSP_SET_NAME",
	IDNavPosHold:                  "MSP_NAV_POSHOLD",
	IDSetNavPosHold:               "MSP_SET_NAV_POSHOLD",
	IDCalibrationData:             "MSP_CALIBRATION_DATA",
	IDSetCalibrationData:          "MSP_SET_CALIBRATION_DATA",
	IDPositionEstimationConfig:    "MSP_POSITION_ESTIMATION_CONFIG",
	IDSetPositionEstimationConfig: "MSP_SET_POSITION_ESTIMATION_CONFIG",
	IDWPMissionLoad:               "MSP_WP_MISSION_LOAD",
	IDWPMissionSave:               "MSP_WP_MISSION_SAVE",
	IDWPGetInfo:                   "MSP_WP_GETINFO",
	IDRTHAndLandConfig:            "MSP_RTH_AND_LAND_CONFIG",
	IDSetRTHAndLandConfig:         "MSP_SET_RTH_AND_LAND_CONFIG",
	IDFWConfig:                    "MSP_FW_CONFIG",
	IDSetFWConfig:                 "MSP_SET_FW_CONFIG",
	IDBatteryConfig:               "MSP_BATTERY_CONFIG",
	IDSetBatteryConfig:            "MSP_SET_BATTERY_CONFIG",
	IDModeRanges:                  "MSP_MODE_RANGES",
	IDSetModeRange:                "MSP_SET_MODE_RANGE",
	IDFeature:                     "MSP_FEATURE",
	IDSetFeature:                  "MSP_SET_FEATURE",
	IDBoardAlignment:              "MSP_BOARD_ALIGNMENT",
	IDSetBoardAlignment:           "MSP_SET_BOARD_ALIGNMENT",
	IDCurrentMeterConfig:          "MSP_CURRENT_METER_CONFIG",
	IDSetCurrentMeterConfig:       "MSP_SET_CURRENT_METER_CONFIG",
	IDMixer:                       "MSP_MIXER",
	IDSetMixer:                    "MSP_SET_MIXER",
	IDRXConfig:                    "MSP_RX_CONFIG",
	IDSetRXConfig:                 "MSP_SET_RX_CONFIG",
	IDLEDColors:                   "MSP_LED_COLORS",
	IDSetLEDColors:                "MSP_SET_LED_COLORS",
	IDLEDStripConfig:              "MSP_LED_STRIP_CONFIG",
	IDSetLEDStripConfig:           "MSP_SET_LED_STRIP_CONFIG",
	IDRSSIConfig:                  "MSP_RSSI_CONFIG",
	IDSetRSSIConfig:               "MSP_SET_RSSI_CONFIG",
	IDAdjustmentRanges:            "MSP_ADJUSTMENT_RANGES",
	IDSetAdjustmentRange:          "MSP_SET_ADJUSTMENT_RANGE",
	IDCFSerialConfig:              "MSP_CF_SERIAL_CONFIG",
	IDSetCFSerialConfig:           "MSP_SET_CF_SERIAL_CONFIG",
	IDVoltageMeterConfig:          "MSP_VOLTAGE_METER_CONFIG",
	IDSetVoltageMeterConfig:       "MSP_SET_VOLTAGE_METER_CONFIG",
	IDSonarAltitude:               "MSP_SONAR_ALTITUDE",
	IDPIDController:               "MSP_PID_CONTROLLER",
	IDSetPIDController:            "MSP_SET_PID_CONTROLLER",
	IDArmingConfig:                "MSP_ARMING_CONFIG",
	IDSetArmingConfig:             "MSP_SET_ARMING_CONFIG",
	IDRXMap:                       "MSP_RX_MAP",
	IDSetRXMap:                    "MSP_SET_RX_MAP",
	IDBFConfig:                    "MSP_BF_CONFIG",
	IDSetBFConfig:                 "MSP_SET_BF_CONFIG",
	IDReboot:                      "MSP_REBOOT",
	IDBFBuildInfo:                 "MSP_BF_BUILD_INFO",
	IDDataflashSummary:            "MSP_DATAFLASH_SUMMARY",
	IDDataflashRead:               "MSP_DATAFLASH_READ",
	IDDataflashErase:              "MSP_DATAFLASH_ERASE",
	IDLoopTime:                    "MSP_LOOP_TIME",
	IDSetLoopTime:                 "MSP_SET_LOOP_TIME",
	IDFailsafeConfig:              "MSP_FAILSAFE_CONFIG",
	IDSetFailsafeConfig:           "MSP_SET_FAILSAFE_CONFIG",
	IDRXFailConfig:                "MSP_RXFAIL_CONFIG",
	IDSetRXFailConfig:             "MSP_SET_RXFAIL_CONFIG",
	IDSDCardSummary:               "MSP_SDCARD_SUMMARY",
	IDBlackboxConfig:              "MSP_BLACKBOX_CONFIG",
	IDSetBlackboxConfig:           "MSP_SET_BLACKBOX_CONFIG",
	IDTransponderConfig:           "MSP_TRANSPONDER_CONFIG",
	IDSetTransponderConfig:        "MSP_SET_TRANSPONDER_CONFIG",
	IDOSDConfig:                   "MSP_OSD_CONFIG",
	IDSetOSDConfig:                "MSP_SET_OSD_CONFIG",
	IDOSDCharRead:                 "MSP_OSD_CHAR_READ",
	IDOSDCharWrite:                "MSP_OSD_CHAR_WRITE",
	IDVTXConfig:                   "MSP_VTX_CONFIG",
	IDSetVTXConfig:                "MSP_SET_VTX_CONFIG",
	IDAdvancedConfig:              "MSP_ADVANCED_CONFIG",
	IDSetAdvancedConfig:           "MSP_SET_ADVANCED_CONFIG",
	IDFilterConfig:                "MSP_FILTER_CONFIG",
	IDSetFilterConfig:             "MSP_SET_FILTER_CONFIG",
	IDPIDAdvanced:                 "MSP_PID_ADVANCED",
	IDSetPIDAdvanced:              "MSP_SET_PID_ADVANCED",
	IDSensorConfig:                "MSP_SENSOR_CONFIG",
	IDSetSensorConfig:             "MSP_SET_SENSOR_CONFIG",
	IDCameraControl:               "MSP_CAMERA_CONTROL",
	IDSetArmingDisabled:           "MSP_SET_ARMING_DISABLED",
	IDIdent:                       "MSP_IDENT",
	IDStatus:                      "MSP_STATUS",
	IDRawIMU:                      "MSP_RAW_IMU",
	IDServo:                       "MSP_SERVO",
	IDMotor:                       "MSP_MOTOR",
	IDRC:                          "MSP_RC",
	IDRawGPS:                      "MSP_RAW_GPS",
	IDCompGPS:                     "MSP_COMP_GPS",
	IDAttitude:                    "MSP_ATTITUDE",
	IDAltitude:                    "MSP_ALTITUDE",
	IDAnalog:                      "MSP_ANALOG",
	IDRCTuning:                    "MSP_RC_TUNING",
	IDPID:                         "MSP_PID",
	IDActiveBoxes:                 "MSP_ACTIVEBOXES",
	IDMisc:                        "MSP_MISC",
	IDMotorPins:                   "MSP_MOTOR_PINS",
	IDBoxNames:                    "MSP_BOXNAMES",
	IDPIDNames:                    "MSP_PIDNAMES",
	IDWP:                          "MSP_WP",
	IDBoxIDs:                      "MSP_BOXIDS",
	IDServoConf:                   "MSP_SERVO_CONF",
	IDNavStatus:                   "MSP_NAV_STATUS",
	IDNavConfig:                   "MSP_NAV_CONFIG",
	IDMotor3DConfig:               "MSP_MOTOR_3D_CONFIG",
	IDRCDeadband:                  "MSP_RC_DEADBAND",
	IDSensorAlignment:             "MSP_SENSOR_ALIGNMENT",
	IDLEDStripModeColor:           "MSP_LED_STRIP_MODECOLOR",
	IDVoltageMeters:               "MSP_VOLTAGE_METERS",
	IDCurrentMeters:               "MSP_CURRENT_METERS",
	IDBatteryState:                "MSP_BATTERY_STATE",
	IDMotorConfig:                 "MSP_MOTOR_CONFIG",
	IDGPSConfig:                   "MSP_GPS_CONFIG",
	IDCompassConfig:               "MSP_COMPASS_CONFIG",
	IDESCSensorData:               "MSP_ESC_SENSOR_DATA",
	IDStatusEx:                    "MSP_STATUS_EX",
	IDSensorStatus:                "MSP_SENSOR_STATUS",
	IDUID:                         "MSP_UID",
	IDGPSSVInfo:                   "MSP_GPSSVINFO",
	IDGPSStatistics:               "MSP_GPSSTATISTICS",
	IDOSDVideoConfig:              "MSP_OSD_VIDEO_CONFIG",
	IDSetOSDVideoConfig:           "MSP_SET_OSD_VIDEO_CONFIG",
	IDDisplayport:                 "MSP_DISPLAYPORT",
	IDCopyProfile:                 "MSP_COPY_PROFILE",
	IDBeeperConfig:                "MSP_BEEPER_CONFIG",
	IDSetBeeperConfig:             "MSP_SET_BEEPER_CONFIG",
	IDSetTXInfo:                   "MSP_SET_TX_INFO",
	IDTXInfo:                      "MSP_TX_INFO",
	IDSetRawRC:                    "MSP_SET_RAW_RC",
	IDSetRawGPS:                   "MSP_SET_RAW_GPS",
	IDSetPID:                      "MSP_SET_PID",
	IDSetBox:                      "MSP_SET_BOX",
	IDSetRCTuning:                 "MSP_SET_RC_TUNING",
	IDAccCalibration:              "MSP_ACC_CALIBRATION",
	IDMagCalibration:              "MSP_MAG_CALIBRATION",
	IDSetMisc:                     "MSP_SET_MISC",
	IDResetConf:                   "MSP_RESET_CONF",
	IDSetWP:                       "MSP_SET_WP",
	IDSelectSetting:               "MSP_SELECT_SETTING",
	IDSetHeading:                  "MSP_SET_HEADING",
	IDSetServoConf:                "MSP_SET_SERVO_CONF",
	IDSetMotor:                    "MSP_SET_MOTOR",
	IDSetNavConfig:                "MSP_SET_NAV_CONFIG",
	IDSetMotor3DConf:              "MSP_SET_MOTOR_3D_CONF",
	IDSetRCDeadband:               "MSP_SET_RC_DEADBAND",
	IDSetResetCurrPID:             "MSP_SET_RESET_CURR_PID",
	IDSetSensorAlignment:          "MSP_SET_SENSOR_ALIGNMENT",
	IDSetLEDStripModeColor:        "MSP_SET_LED_STRIP_MODECOLOR",
	IDSetMotorConfig:              "MSP_SET_MOTOR_CONFIG",
	IDSetGPSConfig:                "MSP_SET_GPS_CONFIG",
	IDSetCompassConfig:            "MSP_SET_COMPASS_CONFIG",
	IDSetAccTrim:                  "MSP_SET_ACC_TRIM",
	IDAccTrim:                     "MSP_ACC_TRIM",
	IDServoMixRules:               "MSP_SERVO_MIX_RULES",
	IDSetServoMixRule:             "MSP_SET_SERVO_MIX_RULE",
	IDPassthroughSerial:           "MSP_PASSTHROUGH_SERIAL",
	IDSet4WayIF:                   "MSP_SET_4WAY_IF",
	IDSetRTC:                      "MSP_SET_RTC",
	IDRTC:                         "MSP_RTC",
	IDEepromWrite:                 "MSP_EEPROM_WRITE",
	IDReserve1:                    "MSP_RESERVE_1",
	IDReserve2:                    "MSP_RESERVE_2",
	IDDebugMsg:                    "MSP_DEBUGMSG",
	IDDebug:                       "MSP_DEBUG",
	IDV2Frame:                     "MSP_V2_FRAME",
	IDCommonTZ:                    "MSP2_COMMON_TZ",
	IDCommonSetTZ:                 "MSP2_COMMON_SET_TZ",
	IDCommonSetting:               "MSP2_COMMON_SETTING",
	IDCommonSetSetting:            "MSP2_COMMON_SET_SETTING",
	IDCommonMotorMixer:            "MSP2_COMMON_MOTOR_MIXER",
	IDCommonSetMotorMixer:         "MSP2_COMMON_SET_MOTOR_MIXER",
	IDInavStatus:                  "MSP2_INAV_STATUS",
	IDInavOpticalFlow:             "MSP2_INAV_OPTICAL_FLOW",
	IDInavAnalog:                  "MSP2_INAV_ANALOG",
	IDInavMisc:                    "MSP2_INAV_MISC",
	IDInavSetMisc:                 "MSP2_INAV_SET_MISC",
	IDInavBatteryConfig:           "MSP2_INAV_BATTERY_CONFIG",
	IDInavSetBatteryConfig:        "MSP2_INAV_SET_BATTERY_CONFIG",
	IDInavRateProfile:             "MSP2_INAV_RATE_PROFILE",
	IDInavSetRateProfile:          "MSP2_INAV_SET_RATE_PROFILE",
	IDInavAirSpeed:                "MSP2_INAV_AIR_SPEED",
}

var idsByName = func() map[string]ID {
	m := make(map[string]ID, len(idNames))
	for id, name := range idNames {
		m[name] = id
	}
	return m
}()

// String 返回线路名称（如 MSP_STATUS），未知标识返回数字
func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("MSP_UNKNOWN(%d)", uint16(id))
}

// IsV2 是否属于 MSPv2 扩展空间
func (id ID) IsV2() bool {
	return id >= v2Threshold
}

// Known 是否为已定义的标识
func (id ID) Known() bool {
	_, ok := idNames[id]
	return ok
}

// ParseID 解析线路名称（大小写不敏感，可省略 MSP_ 前缀）或十进制/0x 十六进制数字
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownID)
	}
	if n, err := strconv.ParseUint(s, 0, 16); err == nil {
		id := ID(n)
		if !id.Known() {
			return 0, fmt.Errorf("%w: %d", ErrUnknownID, n)
		}
		return id, nil
	}
	name := strings.ToUpper(s)
	if id, ok := idsByName[name]; ok {
		return id, nil
	}
	if id, ok := idsByName["MSP_"+name]; ok {
		return id, nil
	}
	if id, ok := idsByName["MSP2_"+name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownID, s)
}
