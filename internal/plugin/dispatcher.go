package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
)

var logger = log.Logger("plugin")

// Dispatcher 插件分发链
type Dispatcher struct {
	name string

	mu      sync.RWMutex
	plugins []FeedPlugin
}

// NewDispatcher 创建分发链
func NewDispatcher(name string, plugins ...FeedPlugin) *Dispatcher {
	d := &Dispatcher{name: name}
	for _, p := range plugins {
		d.Register(p)
	}
	return d
}

// Register 追加插件，nil 被忽略
func (d *Dispatcher) Register(p FeedPlugin) {
	if p == nil {
		return
	}
	d.mu.Lock()
	d.plugins = append(d.plugins, p)
	d.mu.Unlock()
	logger.Debug("注册插件", "chain", d.name, "plugin", p.Name())
}

// Unregister 按名称移除插件，返回是否移除
func (d *Dispatcher) Unregister(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.plugins)
	d.plugins = slices.DeleteFunc(d.plugins, func(p FeedPlugin) bool { return p.Name() == name })
	return len(d.plugins) != n
}

// Len 已注册插件数
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.plugins)
}

// Dispatch 按注册顺序调用插件，返回最终动作
//
// 初始动作为 DiscardImmediate 时不调用任何插件。
func (d *Dispatcher) Dispatch(ctx context.Context, msg *message.FeedMessage, rt interfaces.Routing, action Action) Action {
	d.mu.RLock()
	plugins := slices.Clone(d.plugins)
	d.mu.RUnlock()

	for _, p := range plugins {
		if action == DiscardImmediate {
			break
		}
		action = d.invoke(ctx, p, msg, rt, action)
	}
	return action
}

func (d *Dispatcher) invoke(ctx context.Context, p FeedPlugin, msg *message.FeedMessage, rt interfaces.Routing, action Action) (result Action) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("插件 panic，丢弃消息",
				"chain", d.name,
				"plugin", p.Name(),
				"msg", msg.ID,
				"panic", fmt.Sprint(r))
			result = DiscardImmediate
		}
	}()

	logger.DebugContext(ctx, "调用插件", "chain", d.name, "plugin", p.Name(), "msg", msg.ID)
	return p.HandleFeedMessage(ctx, msg, rt, action)
}
