package msp

// Analog MSP_ANALOG (110)
//
// vbat u8 ×10（V），已用电量 u16（mAh），rssi u16（0-1023），电流 int16 ×100（A）。
type Analog struct {
	base
	Voltage    Value[float64] `json:"vbat_v"`
	PowerMeter Value[uint16]  `json:"mah_drawn"`
	RSSI       Value[uint16]  `json:"rssi"`
	Amperage   Value[float64] `json:"amperage_a"`
}

func NewAnalog(fw FirmwareVariant) *Analog {
	return &Analog{base: base{fw: fw}}
}

func (m *Analog) ID() ID { return IDAnalog }

func (m *Analog) Decode(b *ByteVector) bool {
	m.Voltage.Reset()
	m.PowerMeter.Reset()
	m.RSSI.Reset()
	m.Amperage.Reset()
	return UnpackScaledValue[uint8](b, &m.Voltage, 10, 0) &&
		UnpackValue(b, &m.PowerMeter) &&
		UnpackValue(b, &m.RSSI) &&
		UnpackScaledValue[int16](b, &m.Amperage, 100, 0)
}

func (m *Analog) Describe() string {
	t := newText("Analog")
	t.line("Battery voltage: %v V", m.Voltage)
	t.line("Power drawn: %v mAh", m.PowerMeter)
	t.line("RSSI: %v", m.RSSI)
	t.line("Current: %v A", m.Amperage)
	return t.String()
}

// RawGps MSP_RAW_GPS (106)
//
// fix u8、卫星数 u8、纬度/经度 int32 ×1e7（deg）、高度 u16（m）、
// 地速 u16 ×100（m/s）、航向 u16 ×10（deg）；有剩余字节时再读 hdop u16 ×100。
type RawGps struct {
	base
	Fix          Value[uint8]   `json:"fix"`
	Satellites   Value[uint8]   `json:"satellites"`
	Latitude     Value[float64] `json:"lat_deg"`
	Longitude    Value[float64] `json:"lon_deg"`
	Altitude     Value[uint16]  `json:"altitude_m"`
	GroundSpeed  Value[float64] `json:"ground_speed_mps"`
	GroundCourse Value[float64] `json:"ground_course_deg"`
	HDOP         Value[float64] `json:"hdop"`
}

func NewRawGps(fw FirmwareVariant) *RawGps {
	return &RawGps{base: base{fw: fw}}
}

func (m *RawGps) ID() ID { return IDRawGPS }

func (m *RawGps) Decode(b *ByteVector) bool {
	*m = RawGps{base: m.base}
	ok := UnpackValue(b, &m.Fix) &&
		UnpackValue(b, &m.Satellites) &&
		UnpackScaledValue[int32](b, &m.Latitude, 1e7, 0) &&
		UnpackScaledValue[int32](b, &m.Longitude, 1e7, 0) &&
		UnpackValue(b, &m.Altitude) &&
		UnpackScaledValue[uint16](b, &m.GroundSpeed, 100, 0) &&
		UnpackScaledValue[uint16](b, &m.GroundCourse, 10, 0)
	if ok && b.Remaining() > 0 {
		ok = UnpackScaledValue[uint16](b, &m.HDOP, 100, 0)
	}
	return ok
}

// HasFix 至少 2D 定位
func (m *RawGps) HasFix() bool {
	fix, ok := m.Fix.Get()
	return ok && fix > 0
}

func (m *RawGps) Describe() string {
	t := newText("RawGps")
	t.line("Fix: %v, satellites: %v", m.Fix, m.Satellites)
	t.line("Position: %v, %v deg", m.Latitude, m.Longitude)
	t.line("Altitude: %v m", m.Altitude)
	t.line("Ground speed: %v m/s", m.GroundSpeed)
	t.line("Ground course: %v deg", m.GroundCourse)
	if m.HDOP.IsSet() {
		t.line("HDOP: %v", m.HDOP)
	}
	return t.String()
}
