package fabric

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 统一配置，选项在其上覆盖
	config *config.Config

	// 拓扑，为空时按 config.Topology.File 加载
	topology *topology.Registry

	// 外部传输层，优先于 NATS
	transport interfaces.Transport

	// 指标注册表
	registry *prometheus.Registry

	// 插件
	inbound  []Plugin
	outbound []Plugin

	// 本地投递回调
	handlers []DeliveryHandler

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// resolve 补齐未设置的组件
func (o *options) resolve() error {
	if err := o.config.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if o.topology == nil {
		if o.config.Topology.File != "" {
			reg, err := topology.LoadFile(o.config.Topology.File)
			if err != nil {
				return err
			}
			o.topology = reg
		} else {
			o.topology = topology.NewRegistry()
		}
	}
	// 本地节点总在拓扑中
	local := types.NodeID(o.config.Node.ID)
	if _, ok := o.topology.Status(local); !ok {
		if err := o.topology.AddNode(local, types.NodeAvailable); err != nil {
			return err
		}
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整的统一配置
//
// 应放在其他选项之前，否则会覆盖它们的设置。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 或 YAML 文件加载统一配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithNodeID 设置本地节点标识
func WithNodeID(id NodeID) Option {
	return func(o *options) error {
		if id == "" {
			return errors.New("node id is empty")
		}
		o.config.Node.ID = string(id)
		return nil
	}
}

// WithTopology 使用已构建的拓扑
func WithTopology(reg *topology.Registry) Option {
	return func(o *options) error {
		o.topology = reg
		return nil
	}
}

// WithTopologyFile 从 YAML 文件加载拓扑
func WithTopologyFile(path string) Option {
	return func(o *options) error {
		o.config.Topology.File = path
		return nil
	}
}

// WithNATS 通过 NATS 收发消息
func WithNATS(url string) Option {
	return func(o *options) error {
		o.config.Transport.NATSURL = url
		return nil
	}
}

// WithTransport 使用自定义传输层
//
// 入站消息需由调用方交给 Node.HandleInbound。
func WithTransport(t interfaces.Transport) Option {
	return func(o *options) error {
		o.transport = t
		return nil
	}
}

// WithFloodTTL 设置洪泛消息默认存活时间
func WithFloodTTL(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl <= 0 {
			return fmt.Errorf("flood ttl must be positive, got %s", ttl)
		}
		o.config.Routing.FloodTTL = config.Duration(ttl)
		return nil
	}
}

// WithIntrospect 启用本地诊断服务
//
// addr 为空时使用默认地址 127.0.0.1:6060。不建议暴露到公网，pprof 端点可能泄露敏感信息。
//
//	node, _ := fabric.Start(ctx,
//	    fabric.WithNodeID("A"),
//	    fabric.WithIntrospect("127.0.0.1:9090"),
//	)
//	// 访问 http://127.0.0.1:9090/debug/introspect
func WithIntrospect(addr string) Option {
	return func(o *options) error {
		o.config.Diagnostics.EnableIntrospect = true
		if addr != "" {
			o.config.Diagnostics.IntrospectAddr = addr
		}
		return nil
	}
}

// WithRegistry 把指标注册到指定注册表
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithInboundPlugin 添加入站插件
func WithInboundPlugin(p Plugin) Option {
	return func(o *options) error {
		o.inbound = append(o.inbound, p)
		return nil
	}
}

// WithOutboundPlugin 添加出站插件
func WithOutboundPlugin(p Plugin) Option {
	return func(o *options) error {
		o.outbound = append(o.outbound, p)
		return nil
	}
}

// WithDeliveryHandler 添加本地投递回调
func WithDeliveryHandler(h DeliveryHandler) Option {
	return func(o *options) error {
		o.handlers = append(o.handlers, h)
		return nil
	}
}

// WithFxOptions 添加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
