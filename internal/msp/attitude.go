package msp

// Attitude MSP_ATTITUDE (108)
//
// roll/pitch 为 int16 定点（×10，单位 deg，范围分别为 ±180 与 ±90），yaw 为 u16 航向角（deg）。
type Attitude struct {
	base
	Roll  Value[float64] `json:"roll_deg"`
	Pitch Value[float64] `json:"pitch_deg"`
	Yaw   Value[uint16]  `json:"yaw_deg"`
}

// NewAttitude 创建 Attitude
func NewAttitude(fw FirmwareVariant) *Attitude {
	return &Attitude{base: base{fw: fw}}
}

func (m *Attitude) ID() ID { return IDAttitude }

func (m *Attitude) Decode(b *ByteVector) bool {
	m.Roll.Reset()
	m.Pitch.Reset()
	m.Yaw.Reset()
	return UnpackScaledValue[int16](b, &m.Roll, 10, 0) &&
		UnpackScaledValue[int16](b, &m.Pitch, 10, 0) &&
		UnpackValue(b, &m.Yaw)
}

func (m *Attitude) Describe() string {
	t := newText("Attitude")
	t.line("Roll: %v deg", m.Roll)
	t.line("Pitch: %v deg", m.Pitch)
	t.line("Yaw: %v deg", m.Yaw)
	return t.String()
}

// Altitude MSP_ALTITUDE (109)
//
// altitude int32 ×100（m），vario int16 ×100（m/s）；若仍有剩余字节，再读 int32 ×100 气压高度。
type Altitude struct {
	base
	Altitude     Value[float64] `json:"altitude_m"`
	Vario        Value[float64] `json:"vario_mps"`
	BaroAltitude Value[float64] `json:"baro_altitude_m"`
}

// NewAltitude 创建 Altitude
func NewAltitude(fw FirmwareVariant) *Altitude {
	return &Altitude{base: base{fw: fw}}
}

func (m *Altitude) ID() ID { return IDAltitude }

func (m *Altitude) Decode(b *ByteVector) bool {
	m.Altitude.Reset()
	m.Vario.Reset()
	m.BaroAltitude.Reset()
	if !UnpackScaledValue[int32](b, &m.Altitude, 100, 0) ||
		!UnpackScaledValue[int16](b, &m.Vario, 100, 0) {
		return false
	}
	if b.Remaining() > 0 {
		return UnpackScaledValue[int32](b, &m.BaroAltitude, 100, 0)
	}
	return true
}

func (m *Altitude) Describe() string {
	t := newText("Altitude")
	t.line("Altitude: %v m", m.Altitude)
	t.line("Vertical speed: %v m/s", m.Vario)
	if m.BaroAltitude.IsSet() {
		t.line("Barometer: %v m", m.BaroAltitude)
	}
	return t.String()
}
