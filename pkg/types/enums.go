package types

import "strings"

// ============================================================================
//                              QoS - 服务质量
// ============================================================================

// QoS 消息发送请求的可靠性等级
type QoS int

const (
	// QoSDefault 默认等级，由传输层决定
	QoSDefault QoS = iota
	// QoSReliable 可靠发送
	QoSReliable
	// QoSBestEffort 尽力而为
	QoSBestEffort
	// QoSUnknown 未知等级
	QoSUnknown
)

// String 返回 QoS 的字符串表示
func (q QoS) String() string {
	switch q {
	case QoSDefault:
		return "default"
	case QoSReliable:
		return "reliable"
	case QoSBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// ParseQoS 解析 QoS 字符串，无法识别时返回 QoSUnknown
func ParseQoS(s string) QoS {
	switch strings.ToLower(s) {
	case "", "default":
		return QoSDefault
	case "reliable":
		return QoSReliable
	case "best_effort", "besteffort":
		return QoSBestEffort
	default:
		return QoSUnknown
	}
}

// ============================================================================
//                              NodeStatus - 节点状态
// ============================================================================

// NodeStatus 拓扑中节点的可用状态
type NodeStatus int

const (
	// NodeUnavailable 不可用
	NodeUnavailable NodeStatus = iota
	// NodeAvailable 可用，参与最短路径计算
	NodeAvailable
)

// String 返回状态的字符串表示
func (s NodeStatus) String() string {
	if s == NodeAvailable {
		return "available"
	}
	return "unavailable"
}
