package plugin

import (
	"context"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/interfaces"
)

// Action 插件动作
type Action int

const (
	// Continue 继续处理
	Continue Action = iota
	// Discard 丢弃，后续插件可以撤销
	Discard
	// DiscardImmediate 立即丢弃
	DiscardImmediate
)

// String 返回动作名称
func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Discard:
		return "discard"
	case DiscardImmediate:
		return "discard_immediate"
	default:
		return "unknown"
	}
}

// Dropped 动作是否表示丢弃
func (a Action) Dropped() bool {
	return a != Continue
}

// FeedPlugin Feed 插件
type FeedPlugin interface {
	// Name 插件名称，用于日志
	Name() string

	// HandleFeedMessage 处理消息，返回新的动作
	HandleFeedMessage(ctx context.Context, msg *message.FeedMessage, rt interfaces.Routing, action Action) Action
}

// HandlerFunc 函数形式的插件处理器
type HandlerFunc func(ctx context.Context, msg *message.FeedMessage, rt interfaces.Routing, action Action) Action

// FuncPlugin 把函数包装为插件
type FuncPlugin struct {
	name string
	fn   HandlerFunc
}

// NewFuncPlugin 创建函数插件
func NewFuncPlugin(name string, fn HandlerFunc) *FuncPlugin {
	return &FuncPlugin{name: name, fn: fn}
}

// Name 实现 FeedPlugin
func (p *FuncPlugin) Name() string { return p.name }

// HandleFeedMessage 实现 FeedPlugin
func (p *FuncPlugin) HandleFeedMessage(ctx context.Context, msg *message.FeedMessage, rt interfaces.Routing, action Action) Action {
	return p.fn(ctx, msg, rt, action)
}
