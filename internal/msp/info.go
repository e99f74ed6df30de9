package msp

import "strings"

// ApiVersion MSP_API_VERSION (1)
type ApiVersion struct {
	base
	Protocol Value[uint8] `json:"protocol"`
	Major    Value[uint8] `json:"api_major"`
	Minor    Value[uint8] `json:"api_minor"`
}

func NewApiVersion(fw FirmwareVariant) *ApiVersion {
	return &ApiVersion{base: base{fw: fw}}
}

func (m *ApiVersion) ID() ID { return IDAPIVersion }

func (m *ApiVersion) Decode(b *ByteVector) bool {
	m.Protocol.Reset()
	m.Major.Reset()
	m.Minor.Reset()
	return UnpackValue(b, &m.Protocol) && UnpackValue(b, &m.Major) && UnpackValue(b, &m.Minor)
}

func (m *ApiVersion) Describe() string {
	t := newText("ApiVersion")
	t.line("Protocol: %v", m.Protocol)
	t.line("API: %v.%v", m.Major, m.Minor)
	return t.String()
}

// FcVariant MSP_FC_VARIANT (2)：4 字节固件标识，例如 "INAV"、"BTFL"
type FcVariant struct {
	base
	Identifier Value[string] `json:"identifier"`
}

func NewFcVariant(fw FirmwareVariant) *FcVariant {
	return &FcVariant{base: base{fw: fw}}
}

func (m *FcVariant) ID() ID { return IDFCVariant }

func (m *FcVariant) Decode(b *ByteVector) bool {
	m.Identifier.Reset()
	return b.UnpackStringValue(&m.Identifier, 4)
}

// Variant 将标识映射为固件分支；未知或未解码时返回 FirmwareNone
func (m *FcVariant) Variant() FirmwareVariant {
	id, ok := m.Identifier.Get()
	if !ok {
		return FirmwareNone
	}
	for i, code := range firmwareCodes {
		if i != int(FirmwareNone) && strings.EqualFold(strings.TrimSpace(id), code) {
			return FirmwareVariant(i)
		}
	}
	return FirmwareNone
}

func (m *FcVariant) Describe() string {
	t := newText("FcVariant")
	t.line("Identifier: %v", m.Identifier)
	t.line("Variant: %s", m.Variant().Description())
	return t.String()
}

// FcVersion MSP_FC_VERSION (3)
type FcVersion struct {
	base
	Major Value[uint8] `json:"major"`
	Minor Value[uint8] `json:"minor"`
	Patch Value[uint8] `json:"patch"`
}

func NewFcVersion(fw FirmwareVariant) *FcVersion {
	return &FcVersion{base: base{fw: fw}}
}

func (m *FcVersion) ID() ID { return IDFCVersion }

func (m *FcVersion) Decode(b *ByteVector) bool {
	m.Major.Reset()
	m.Minor.Reset()
	m.Patch.Reset()
	return UnpackValue(b, &m.Major) && UnpackValue(b, &m.Minor) && UnpackValue(b, &m.Patch)
}

func (m *FcVersion) Describe() string {
	return newText("FcVersion").line("Version: %v.%v.%v", m.Major, m.Minor, m.Patch).String()
}
