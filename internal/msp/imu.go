package msp

// RawImu MSP_RAW_IMU (102)：加速度计、陀螺仪、磁力计各三轴 int16 原始值
type RawImu struct {
	base
	Acc  [3]Value[int16] `json:"acc"`
	Gyro [3]Value[int16] `json:"gyro"`
	Mag  [3]Value[int16] `json:"mag"`
}

// NewRawImu 创建 RawImu
func NewRawImu(fw FirmwareVariant) *RawImu {
	return &RawImu{base: base{fw: fw}}
}

func (m *RawImu) ID() ID { return IDRawIMU }

func (m *RawImu) Decode(b *ByteVector) bool {
	m.Acc, m.Gyro, m.Mag = [3]Value[int16]{}, [3]Value[int16]{}, [3]Value[int16]{}
	for _, axes := range []*[3]Value[int16]{&m.Acc, &m.Gyro, &m.Mag} {
		for i := range axes {
			if !UnpackValue(b, &axes[i]) {
				return false
			}
		}
	}
	return true
}

func (m *RawImu) Describe() string {
	t := newText("RawImu")
	t.line("Linear acceleration: %s", triple(m.Acc))
	t.line("Angular velocity: %s", triple(m.Gyro))
	t.line("Magnetometer: %s", triple(m.Mag))
	return t.String()
}

// Calibration 原始 IMU 读数到物理单位的换算常量，需按传感器手册确定
type Calibration struct {
	// AccOneG 1g 对应的加速度计读数
	AccOneG float64 `mapstructure:"acc_one_g" json:"acc_one_g" yaml:"acc_one_g"`
	// GyroUnit 每个读数对应的 deg/s
	GyroUnit float64 `mapstructure:"gyro_unit" json:"gyro_unit" yaml:"gyro_unit"`
	// MagGain 读数到 µT 的系数
	MagGain float64 `mapstructure:"mag_gain" json:"mag_gain" yaml:"mag_gain"`
	// StandardGravity 1g 的加速度（m/s²）
	StandardGravity float64 `mapstructure:"standard_gravity" json:"standard_gravity" yaml:"standard_gravity"`
}

// DefaultCalibration MPU6050 + HMC5883 量程下的常用取值
func DefaultCalibration() Calibration {
	return Calibration{
		AccOneG:         512.0,
		GyroUnit:        1.0 / 4.096,
		MagGain:         0.92 / 10.0,
		StandardGravity: 9.80665,
	}
}

// ImuPhysicalUnits 由 RawImu 换算得到的物理量（不参与线路解码）
type ImuPhysicalUnits struct {
	Acc  [3]Value[float64] `json:"acc_mps2"`
	Gyro [3]Value[float64] `json:"gyro_dps"`
	Mag  [3]Value[float64] `json:"mag_ut"`
}

// NewImuPhysicalUnits 换算 raw 的九个值，全部标记为已设置
func NewImuPhysicalUnits(raw *RawImu, cal Calibration) ImuPhysicalUnits {
	var out ImuPhysicalUnits
	for i := 0; i < 3; i++ {
		out.Acc[i].Set(float64(raw.Acc[i].Data()) / cal.AccOneG * cal.StandardGravity)
		out.Gyro[i].Set(float64(raw.Gyro[i].Data()) * cal.GyroUnit)
		out.Mag[i].Set(float64(raw.Mag[i].Data()) * cal.MagGain)
	}
	return out
}

func (u ImuPhysicalUnits) Describe() string {
	t := newText("Imu")
	t.line("Linear acceleration: %s m/s²", triple(u.Acc))
	t.line("Angular velocity: %s deg/s", triple(u.Gyro))
	t.line("Magnetometer: %s uT", triple(u.Mag))
	return t.String()
}
