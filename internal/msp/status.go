package msp

// statusBase MSP_STATUS 与 MSP2_INAV_STATUS 共用的前缀字段
type statusBase struct {
	CycleTime      Value[uint16] `json:"cycle_time_us"`
	I2CErrors      Value[uint16] `json:"i2c_errors"`
	Sensors        Set[Sensor]   `json:"sensors"`
	BoxModes       Set[int]      `json:"box_modes"`
	CurrentProfile Value[uint8]  `json:"current_profile"`
}

// unpackCounters 周期时间、I2C 错误数与传感器掩码
func (s *statusBase) unpackCounters(b *ByteVector) bool {
	if !UnpackValue(b, &s.CycleTime) || !UnpackValue(b, &s.I2CErrors) {
		return false
	}
	var mask uint16
	if !Unpack(b, &mask) {
		return false
	}
	s.Sensors = DecodeBitmask(uint64(mask), SensorBits)
	return true
}

func (s *statusBase) unpackBoxModes(b *ByteVector) bool {
	var mask uint32
	if !Unpack(b, &mask) {
		return false
	}
	s.BoxModes = DecodeBoxModes(mask)
	return true
}

// UnpackFrom 依次解包 cycle time、i2c errors、传感器掩码、box 掩码、当前 profile
func (s *statusBase) UnpackFrom(b *ByteVector) bool {
	*s = statusBase{Sensors: make(Set[Sensor]), BoxModes: make(Set[int])}
	return s.unpackCounters(b) && s.unpackBoxModes(b) && UnpackValue(b, &s.CurrentProfile)
}

func (s *statusBase) HasAccelerometer() bool { return s.Sensors.Has(SensorAccelerometer) }
func (s *statusBase) HasBarometer() bool     { return s.Sensors.Has(SensorBarometer) }
func (s *statusBase) HasMagnetometer() bool  { return s.Sensors.Has(SensorMagnetometer) }
func (s *statusBase) HasGPS() bool           { return s.Sensors.Has(SensorGPS) }
func (s *statusBase) HasSonar() bool         { return s.Sensors.Has(SensorSonar) }
func (s *statusBase) HasOpticalFlow() bool   { return s.Sensors.Has(SensorOpticalFlow) }
func (s *statusBase) HasPitot() bool         { return s.Sensors.Has(SensorPitot) }

// IsHealthy 飞控上报 GeneralHealth 位
func (s *statusBase) IsHealthy() bool { return s.Sensors.Has(SensorGeneralHealth) }

func (s *statusBase) describeSensors(t *text) {
	t.line("Sensors:")
	t.line("   Accelerometer: %s", onOff(s.HasAccelerometer()))
	t.line("   Barometer: %s", onOff(s.HasBarometer()))
	t.line("   Magnetometer: %s", onOff(s.HasMagnetometer()))
	t.line("   GPS: %s", onOff(s.HasGPS()))
	t.line("   Sonar: %s", onOff(s.HasSonar()))
	t.line("   OpticalFlow: %s", onOff(s.HasOpticalFlow()))
	t.line("   Pitot: %s", onOff(s.HasPitot()))
	t.line("   Healthy: %s", onOff(s.IsHealthy()))
}

// Status MSP_STATUS (101)
type Status struct {
	base
	statusBase
}

// NewStatus 创建 Status
func NewStatus(fw FirmwareVariant) *Status {
	return &Status{base: base{fw: fw}}
}

func (m *Status) ID() ID { return IDStatus }

func (m *Status) Decode(b *ByteVector) bool {
	return m.statusBase.UnpackFrom(b)
}

func (m *Status) Describe() string {
	t := newText("Status")
	t.line("Cycle time: %v us", m.CycleTime)
	t.line("I2C errors: %v", m.I2CErrors)
	m.describeSensors(t)
	t.line("Active Boxes (by ID): %s", m.BoxModes.Join(" "))
	t.line("Current profile: %v", m.CurrentProfile)
	return t.String()
}

// InavStatus MSP2_INAV_STATUS (0x2000)
//
// 布局：cycle time u16、i2c errors u16、传感器掩码 u16、CPU 负载 u16、
// profile 字节（低 4 位配置 profile，高 4 位电池 profile）、解锁标志 u32、box 掩码 u32。
// 之后的字节（如 mixer profile）被忽略。
type InavStatus struct {
	base
	statusBase
	CPULoad        Value[uint16]   `json:"cpu_load_percent"`
	BatteryProfile Value[uint8]    `json:"battery_profile"`
	ArmingFlags    Set[ArmingFlag] `json:"arming_flags"`
	ArmingMask     Value[uint32]   `json:"arming_mask"`
}

// NewInavStatus 创建 InavStatus
func NewInavStatus(fw FirmwareVariant) *InavStatus {
	return &InavStatus{base: base{fw: fw}}
}

func (m *InavStatus) ID() ID { return IDInavStatus }

func (m *InavStatus) Decode(b *ByteVector) bool {
	m.statusBase = statusBase{Sensors: make(Set[Sensor]), BoxModes: make(Set[int])}
	m.CPULoad.Reset()
	m.BatteryProfile.Reset()
	m.ArmingMask.Reset()
	m.ArmingFlags = make(Set[ArmingFlag])

	if !m.unpackCounters(b) || !UnpackValue(b, &m.CPULoad) {
		return false
	}
	var profile uint8
	if !Unpack(b, &profile) {
		return false
	}
	m.CurrentProfile.Set(profile & 0x0f)
	m.BatteryProfile.Set(profile >> 4)
	if !UnpackValue(b, &m.ArmingMask) {
		return false
	}
	m.ArmingFlags = DecodeArmingFlags(m.ArmingMask.Data())
	return m.unpackBoxModes(b)
}

// IsArmed ARMED 位已置
func (m *InavStatus) IsArmed() bool {
	return m.ArmingFlags.Has(Armed)
}

// ArmingBlockers 当前阻止解锁的原因
func (m *InavStatus) ArmingBlockers() []ArmingFlag {
	var out []ArmingFlag
	for _, f := range m.ArmingFlags.Sorted() {
		if f&ArmingDisabledAllFlags != 0 {
			out = append(out, f)
		}
	}
	return out
}

func (m *InavStatus) Describe() string {
	t := newText("InavStatus")
	t.line("Cycle time: %v us", m.CycleTime)
	t.line("I2C errors: %v", m.I2CErrors)
	t.line("CPU load: %v %%", m.CPULoad)
	m.describeSensors(t)
	t.line("Profile: %v, battery profile: %v", m.CurrentProfile, m.BatteryProfile)
	t.line("Arming flags: %s", m.ArmingFlags.Join(" "))
	t.line("Arming blockers: %d", len(m.ArmingBlockers()))
	t.line("Active Boxes (by ID): %s", m.BoxModes.Join(" "))
	return t.String()
}
