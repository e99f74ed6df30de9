package outbound

import "github.com/tasifacuj/mission-control/internal/msp"

// 请求优先级定义
// 注意: 数值越小=优先级越高（Redis ZPOPMIN取最小score）
const (
	// PriorityEmergency 紧急请求
	// 场景: RC 覆盖等控制类命令
	PriorityEmergency = 1

	// PriorityHigh 高优先级请求
	// 场景: 姿态、IMU、状态等高频遥测
	PriorityHigh = 2

	// PriorityNormal 普通优先级请求
	// 场景: 高度、电源、GPS
	PriorityNormal = 3

	// PriorityLow 低优先级请求
	// 场景: 版本、固件标识等静态信息
	PriorityLow = 4

	// PriorityBackground 后台任务
	PriorityBackground = 5
)

// GetRequestPriority 根据消息标识返回优先级
func GetRequestPriority(id msp.ID) int {
	switch id {
	case msp.IDSetRawRC: // RC 覆盖
		return PriorityEmergency

	case msp.IDAttitude, msp.IDRawIMU, msp.IDRC:
		return PriorityHigh
	case msp.IDStatus, msp.IDInavStatus:
		return PriorityHigh

	case msp.IDAltitude, msp.IDAnalog, msp.IDRawGPS:
		return PriorityNormal

	case msp.IDAPIVersion, msp.IDFCVariant, msp.IDFCVersion:
		return PriorityLow

	default:
		return PriorityNormal
	}
}
