package fabric

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/dep2p/go-fabric/internal/bus"
	"github.com/dep2p/go-fabric/internal/core/metrics"
	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/internal/debug/introspect"
	"github.com/dep2p/go-fabric/internal/plugin"
	"github.com/dep2p/go-fabric/internal/protocol/flood"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/internal/routing"
	"github.com/dep2p/go-fabric/internal/transport/natsbus"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
)

var fxLogger = log.Logger("fabric/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置、拓扑、指标注册表
//  2. Metrics → Flood → Routing
//  3. 传输：自定义传输 / NATS / 仅本地投递，外包一层流量计量
//  4. Forwarding → Bus
//  5. 诊断服务
//  6. 插件与用户扩展
func buildFxApp(o *options, n *Node) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Supply(o.topology),
		fx.Supply(fx.Annotate(o.topology, fx.As(new(interfaces.TopologyQuery)))),
		fx.Supply(fx.Annotate(o.registry, fx.As(new(prometheus.Registerer), new(prometheus.Gatherer)))),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module,
		flood.Module,
		routing.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 传输层
	// ════════════════════════════════════════════════════════════════════════
	useNATS := o.transport == nil && o.config.Transport.NATSURL != ""
	if useNATS {
		modules = append(modules,
			natsbus.Module,
			fx.Provide(func(s *bus.Service) natsbus.InboundHandler { return s }),
		)
		fxLogger.Debug("已加载 NATS 传输", "url", o.config.Transport.NATSURL)
	}
	modules = append(modules, fx.Provide(provideTransport(o, n.transport)))

	// ════════════════════════════════════════════════════════════════════════
	// 4. 转发与总线
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		forwarding.Module,
		bus.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 5. 诊断（未启用时不创建服务）
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, introspect.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 6. 插件与用户扩展
	// ════════════════════════════════════════════════════════════════════════
	for _, p := range o.inbound {
		modules = append(modules, supplyPlugin(p, "inbound_plugins"))
	}
	for _, p := range o.outbound {
		modules = append(modules, supplyPlugin(p, "outbound_plugins"))
	}
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 7. Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectNodeComponents(n)))

	// ════════════════════════════════════════════════════════════════════════
	// 8. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// Fx 事件以 debug 级别写入 slog
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.SlogLogger{Logger: fxLogger.Slog()}
			l.UseContext(context.Background())
			l.UseLogLevel(slog.LevelDebug)
			return l
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

func supplyPlugin(p Plugin, group string) fx.Option {
	return fx.Supply(fx.Annotate(p,
		fx.As(new(plugin.FeedPlugin)),
		fx.ResultTags(`group:"`+group+`"`),
	))
}

// ════════════════════════════════════════════════════════════════════════════
// 传输装配
// ════════════════════════════════════════════════════════════════════════════

type transportParams struct {
	fx.In

	NATS     *natsbus.Transport `optional:"true"`
	Reporter metrics.Reporter
}

// provideTransport 组装节点传输：下层传输 → 本地投递 → 流量计量
func provideTransport(o *options, nt *nodeTransport) func(transportParams) interfaces.Transport {
	return func(p transportParams) interfaces.Transport {
		switch {
		case o.transport != nil:
			nt.setNext(o.transport)
		case p.NATS != nil:
			nt.setNext(p.NATS)
		default:
			fxLogger.Info("未配置传输层，只能向本地订阅者投递")
		}
		return metrics.NewMeteredTransport(nt, p.Reporter)
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入
// ════════════════════════════════════════════════════════════════════════════

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Bus       *bus.Service
	Forwarder *forwarding.Service
	Cache     *flood.Cache
	Collector *metrics.Collector
	Reporter  metrics.Reporter
	Topology  *topology.Registry
}

// injectNodeComponents 将 Fx 创建的组件注入到 Node
func injectNodeComponents(node *Node) any {
	return func(p nodeInjectParams) {
		node.bus = p.Bus
		node.forwarder = p.Forwarder
		node.cache = p.Cache
		node.collector = p.Collector
		node.reporter = p.Reporter
		node.topology = p.Topology
	}
}
