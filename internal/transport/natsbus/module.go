package natsbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/types"
)

// InboundHandler 处理从 NATS 收到的节点消息，通常由 bus.Service 提供
type InboundHandler interface {
	HandleInbound(ctx context.Context, data []byte) error
}

// Module NATS 传输 Fx 模块
//
// 提供 *Transport，并在启动时监听本节点主题。
// interfaces.Transport 由装配方提供，通常在 *Transport 外包一层计量。
var Module = fx.Module("natsbus",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// Params 传输依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config
}

// Result 传输导出结果
type Result struct {
	fx.Out

	Transport *Transport
}

// NewFromParams 从 Fx 参数连接 NATS
func NewFromParams(lc fx.Lifecycle, p Params) (Result, error) {
	t, err := Connect(context.Background(), ConfigFromUnified(p.UnifiedCfg))
	if err != nil {
		return Result{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return t.Close()
		},
	})
	return Result{Transport: t}, nil
}

type lifecycleParams struct {
	fx.In

	LC         fx.Lifecycle
	UnifiedCfg *config.Config
	Transport  *Transport
	Handler    InboundHandler `optional:"true"`
}

func registerLifecycle(p lifecycleParams) {
	if p.Handler == nil {
		return
	}
	node := types.NodeID(p.UnifiedCfg.Node.ID)
	ctx, cancel := context.WithCancel(context.Background())
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return p.Transport.Listen(ctx, node, p.Handler.HandleInbound)
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
