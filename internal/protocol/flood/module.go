package flood

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/interfaces"
)

// Module 洪泛去重 Fx 模块
var Module = fx.Module("flood",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// Params 去重缓存依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Recorder   Recorder       `optional:"true"`
}

// Result 去重缓存导出结果
type Result struct {
	fx.Out

	Cache      *Cache
	DedupCache interfaces.DedupCache
}

// NewFromParams 从 Fx 参数创建去重缓存
func NewFromParams(p Params) (Result, error) {
	c, err := NewWithConfig(ConfigFromUnified(p.UnifiedCfg))
	if err != nil {
		return Result{}, err
	}
	if p.Recorder != nil {
		c.SetRecorder(p.Recorder)
	}
	return Result{Cache: c, DedupCache: c}, nil
}

func registerLifecycle(lc fx.Lifecycle, c *Cache) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// 清理循环的生命周期由 Stop 控制，不随启动 context 结束
			return c.Start(context.Background())
		},
		OnStop: func(context.Context) error {
			return c.Stop()
		},
	})
}
