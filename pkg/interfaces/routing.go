package interfaces

import (
	"time"

	"github.com/dep2p/go-fabric/pkg/types"
)

// RoutingType 路由类型标签，线上重建时据此选择变体
type RoutingType string

const (
	// RoutingStatic 静态路由
	RoutingStatic RoutingType = "static"
	// RoutingFlood 洪泛路由
	RoutingFlood RoutingType = "flood"
)

// Message 可被路由的消息
type Message interface {
	UID() types.MessageID
}

// Routing 路由策略的公共契约
//
// 空 NodeID 表示"无"。
type Routing interface {
	// Type 类型标签
	Type() RoutingType

	// CurrentNode 本地节点
	CurrentNode() types.NodeID

	// PreviousNode 上一跳
	PreviousNode() types.NodeID

	// StartNode 起点
	StartNode() types.NodeID

	// EndNode 终点
	EndNode() types.NodeID

	// NextNodes 下一跳，可能为空
	NextNodes() []types.NodeID

	// ReturnRoute 返回路由，没有时为 nil
	ReturnRoute() Routing

	// IsDuplicate 消息是否已被本节点处理过
	IsDuplicate(msg Message) bool

	// Property 读取路由属性
	Property(key string) (string, bool)

	// SetProperty 设置路由属性
	SetProperty(key, value string)

	// Properties 返回属性副本
	Properties() map[string]string

	// Embed 写入结构化文档的 path 节点下
	Embed(path string, doc Document) error

	// Clone 深拷贝
	Clone() Routing
}

// DedupCache 洪泛去重缓存
type DedupCache interface {
	// IsDuplicate 纯查询，不修改缓存
	IsDuplicate(id types.MessageID) bool

	// Add 登记消息，ttl <= 0 表示永不过期；重复登记无副作用
	Add(id types.MessageID, ttl time.Duration, retained bool)

	// MarkSeen 原子地查询并登记，返回此前是否已存在
	MarkSeen(id types.MessageID, ttl time.Duration, retained bool) bool

	// Remove 删除登记
	Remove(id types.MessageID)
}
