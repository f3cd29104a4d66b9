package types

import "strings"

// ============================================================================
//                              NodeID - 节点标识
// ============================================================================

// NodeID 织网节点标识符，部署内全局唯一
//
// 空字符串表示"无"，用于上一跳/终点等可缺省的位置。
type NodeID string

// EmptyNodeID 空节点 ID
const EmptyNodeID NodeID = ""

// VirtualNodeID 虚拟终点
//
// 以虚拟节点为终点的路由只包含起点本身。
const VirtualNodeID NodeID = "$virtual"

// String 返回字符串表示
func (id NodeID) String() string { return string(id) }

// IsEmpty 是否为空
func (id NodeID) IsEmpty() bool { return id == EmptyNodeID }

// NodeIDs 将字符串切片转换为节点 ID 切片
func NodeIDs(ss ...string) []NodeID {
	out := make([]NodeID, 0, len(ss))
	for _, s := range ss {
		out = append(out, NodeID(s))
	}
	return out
}

// JoinNodeIDs 以 sep 连接节点 ID
func JoinNodeIDs(ids []NodeID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, sep)
}

// ============================================================================
//                              MessageID - 消息标识
// ============================================================================

// MessageID 消息唯一标识，洪泛去重以此为键
type MessageID string

// String 返回字符串表示
func (id MessageID) String() string { return string(id) }

// ============================================================================
//                              FeedDescriptor - 数据源描述
// ============================================================================

// FeedDescriptor 描述一条 feed：所属平台、服务和 feed 名称
type FeedDescriptor struct {
	Platform string `json:"platform" yaml:"platform"`
	Service  string `json:"service" yaml:"service"`
	Feed     string `json:"feed" yaml:"feed"`
}

// ParseFeedDescriptor 解析 "platform/service/feed" 形式的描述
//
// 缺少的前缀段留空，因此 "feed" 和 "service/feed" 也是合法输入。
func ParseFeedDescriptor(s string) FeedDescriptor {
	parts := strings.SplitN(s, "/", 3)
	switch len(parts) {
	case 3:
		return FeedDescriptor{Platform: parts[0], Service: parts[1], Feed: parts[2]}
	case 2:
		return FeedDescriptor{Service: parts[0], Feed: parts[1]}
	default:
		return FeedDescriptor{Feed: parts[0]}
	}
}

// String 返回 "platform/service/feed" 形式
func (d FeedDescriptor) String() string {
	return d.Platform + "/" + d.Service + "/" + d.Feed
}

// IsZero 是否为空描述
func (d FeedDescriptor) IsZero() bool {
	return d == FeedDescriptor{}
}
