package bus

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/internal/core/metrics"
	"github.com/dep2p/go-fabric/internal/plugin"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/internal/routing"
)

// Module 总线 Fx 模块
var Module = fx.Module("bus",
	fx.Provide(NewFromParams),
)

// Params 总线依赖参数
type Params struct {
	fx.In

	Factory   *routing.Factory
	Forwarder *forwarding.Service
	Reporter  metrics.Reporter `optional:"true"`

	// 从 group 收集插件
	InboundPlugins  []plugin.FeedPlugin `group:"inbound_plugins"`
	OutboundPlugins []plugin.FeedPlugin `group:"outbound_plugins"`
}

// NewFromParams 从 Fx 参数创建总线服务
func NewFromParams(p Params) (*Service, error) {
	s, err := New(p.Factory, p.Forwarder)
	if err != nil {
		return nil, err
	}
	if p.Reporter != nil {
		s.SetReporter(p.Reporter)
	}
	for _, pl := range p.InboundPlugins {
		s.InboundPlugins().Register(pl)
	}
	for _, pl := range p.OutboundPlugins {
		s.OutboundPlugins().Register(pl)
	}
	return s, nil
}
