package forwarding

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/interfaces"
)

// Module 转发服务 Fx 模块
var Module = fx.Module("forwarding",
	fx.Provide(NewServiceFromParams),
	fx.Invoke(registerLifecycle),
)

// Params 转发服务依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Transport  interfaces.Transport
	Recorder   Recorder `optional:"true"`
}

// NewServiceFromParams 从 Fx 参数创建转发服务
func NewServiceFromParams(p Params) (*Service, error) {
	s, err := NewService(ConfigFromUnified(p.UnifiedCfg), p.Transport)
	if err != nil {
		return nil, err
	}
	if p.Recorder != nil {
		s.SetRecorder(p.Recorder)
	}
	return s, nil
}

func registerLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start(context.Background())
		},
		OnStop: func(context.Context) error {
			return s.Stop()
		},
	})
}
