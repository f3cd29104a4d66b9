package routing

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/interfaces"
)

// ============================================================================
//
//	Fx 模块定义
//
// ============================================================================

// Module 路由 Fx 模块
var Module = fx.Module("routing",
	fx.Provide(NewFactoryFromParams),
)

// Params 路由工厂依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config
	Topology   interfaces.TopologyQuery
	Dedup      interfaces.DedupCache `optional:"true"`
	Recorder   Recorder              `optional:"true"`
}

// Result 路由工厂导出结果
type Result struct {
	fx.Out

	Factory *Factory
}

// changeNotifier 能通知拓扑变化的拓扑实现
type changeNotifier interface {
	OnChange(fn func())
}

// NewFactoryFromParams 从 Fx 参数创建路由工厂
func NewFactoryFromParams(p Params) (Result, error) {
	f, err := NewFactory(ConfigFromUnified(p.UnifiedCfg), p.Topology, p.Dedup)
	if err != nil {
		return Result{}, err
	}
	if p.Recorder != nil {
		f.SetRecorder(p.Recorder)
	}
	if n, ok := p.Topology.(changeNotifier); ok {
		n.OnChange(f.finder.Invalidate)
	}
	return Result{Factory: f}, nil
}
