package fabric

import (
	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/internal/plugin"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// NodeID 节点标识
	NodeID = types.NodeID

	// Feed 数据流描述符 platform/service/feed
	Feed = types.FeedDescriptor

	// QoS 服务质量
	QoS = types.QoS

	// Subscription 本地订阅
	Subscription = types.Subscription

	// Message 织网消息
	Message = message.FeedMessage

	// Plugin 入站或出站插件
	Plugin = plugin.FeedPlugin

	// PluginAction 插件处理结果
	PluginAction = plugin.Action

	// PluginFunc 函数形式的插件处理器
	PluginFunc = plugin.HandlerFunc

	// Routing 消息携带的路由
	Routing = interfaces.Routing
)

// 服务质量
const (
	QoSDefault    = types.QoSDefault
	QoSReliable   = types.QoSReliable
	QoSBestEffort = types.QoSBestEffort
)

// 插件处理结果
const (
	Continue         = plugin.Continue
	Discard          = plugin.Discard
	DiscardImmediate = plugin.DiscardImmediate
)

// ParseFeed 解析 "platform/service/feed" 形式的描述符
func ParseFeed(s string) Feed {
	return types.ParseFeedDescriptor(s)
}

// NewPlugin 用函数创建插件
func NewPlugin(name string, fn PluginFunc) Plugin {
	return plugin.NewFuncPlugin(name, fn)
}
