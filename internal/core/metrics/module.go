package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-fabric/internal/protocol/flood"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/internal/routing"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	// Registerer 未提供时使用独立的注册表
	Registerer prometheus.Registerer `optional:"true"`
}

// Result Metrics 导出结果
type Result struct {
	fx.Out

	Collector          *Collector
	Reporter           Reporter
	ForwardingRecorder forwarding.Recorder
	FloodRecorder      flood.Recorder
	RoutingRecorder    routing.Recorder
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建指标集合和流量计数器
func NewFromParams(p Params) (Result, error) {
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c, err := NewCollector(reg)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Collector:          c,
		Reporter:           NewTrafficCounter(),
		ForwardingRecorder: c,
		FloodRecorder:      c,
		RoutingRecorder:    c,
	}, nil
}
