package routing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/internal/core/document"
	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/pkg/types"
)

// ============================================================================
//                              Factory 测试
// ============================================================================

// TestNewFactory_InvalidConfig 测试配置校验
func TestNewFactory_InvalidConfig(t *testing.T) {
	_, err := NewFactory(DefaultConfig(), topology.NewRegistry(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := DefaultConfig()
	cfg.LocalNode = "A"
	_, err = NewFactory(cfg, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestFactory_PathCacheNoGoroutine 测试带缓存的工厂不遗留后台 goroutine
func TestFactory_PathCacheNoGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.NewConfig()
	cfg.Node.ID = "A"
	require.Positive(t, cfg.Routing.PathCacheSize)
	require.Positive(t, cfg.Routing.PathCacheTTL.Duration())

	reg := topology.NewTestRegistry(t, "A-B", "B-C")
	res, err := NewFactoryFromParams(Params{UnifiedCfg: cfg, Topology: reg})
	require.NoError(t, err)

	assert.Equal(t, types.NodeIDs("A", "B", "C"), res.Factory.finder.ShortestPath("A", "C"))
	require.NoError(t, reg.AddNeighbour("A", "C"))
	assert.Equal(t, types.NodeIDs("A", "C"), res.Factory.finder.ShortestPath("A", "C"))
}

// TestFactory_Decode_UnknownType 测试未知类型标签显式失败
func TestFactory_Decode_UnknownType(t *testing.T) {
	f := newTestFactory(t, "A")
	rec := newCountingRecorder()
	f.SetRecorder(rec)

	doc := document.New()
	require.NoError(t, doc.Set("rt/type", "multicast"))
	require.NoError(t, doc.Set("rt/nodes", []string{"A", "B"}))

	r, err := f.Decode("rt", doc)
	assert.ErrorIs(t, err, ErrUnknownRoutingType)
	assert.Nil(t, r)

	_, err = f.Decode("missing", doc)
	assert.ErrorIs(t, err, ErrMissingRoutingType)
	assert.Equal(t, 2, rec.decode)
}

// TestFactory_Decode_InvalidStatic 测试节点字段类型错误
func TestFactory_Decode_InvalidStatic(t *testing.T) {
	f := newTestFactory(t, "A")
	doc := document.New()
	require.NoError(t, doc.Set("rt/type", "static"))
	require.NoError(t, doc.Set("rt/nodes", "A,B"))

	_, err := f.Decode("rt", doc)
	assert.ErrorIs(t, err, ErrInvalidRouting)
}

// TestFactory_RouteNodes 测试路由描述解析
func TestFactory_RouteNodes(t *testing.T) {
	f := newTestFactory(t, "A", "A-B", "B-C")

	tests := []struct {
		name       string
		start, end types.NodeID
		desc       string
		want       []types.NodeID
	}{
		{"显式列表", "A", "C", "nodes= A , B ,C", types.NodeIDs("A", "B", "C")},
		{"大小写不敏感", "A", "C", "NODES=A,C", types.NodeIDs("A", "C")},
		{"动态", "A", "C", "factory=dynamic", types.NodeIDs("A", "B", "C")},
		{"全限定工厂名", "A", "C", "factory=fabric.bus.routing.DynamicRoutingFactory", types.NodeIDs("A", "B", "C")},
		{"虚拟终点", "A", types.VirtualNodeID, "nodes=A,B", types.NodeIDs("A")},
		{"无法识别按最短路径", "A", "C", "via satellite", types.NodeIDs("A", "B", "C")},
		{"打包路由", "A", "C", `<route><nd to="A"/><nd to="X"/><nd to="C"/></route>`, types.NodeIDs("A", "X", "C")},
		{"空打包路由退化为点对点", "A", "C", "<route/>", types.NodeIDs("A", "C")},
		{"损坏的打包路由退化为点对点", "A", "C", "<route><nd", types.NodeIDs("A", "C")},
		{"空结果退化为点对点", "A", "Z", "factory=dynamic", types.NodeIDs("A", "Z")},
		{"未注册工厂退化为点对点", "A", "C", "factory=satellite", types.NodeIDs("A", "C")},
		{"空列表退化为点对点", "A", "C", "nodes=", types.NodeIDs("A", "C")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.RouteNodes(tt.start, tt.end, tt.desc))
		})
	}
}

// TestPackRoute 测试打包路由描述的生成和解析
func TestPackRoute(t *testing.T) {
	desc, err := PackRoute(types.NodeIDs("A", "B&C", "D"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(desc, "<route>"))

	nodes, err := UnpackRoute(desc)
	require.NoError(t, err)
	assert.Equal(t, types.NodeIDs("A", "B&C", "D"), nodes)

	_, err = UnpackRoute("<other/>")
	assert.ErrorIs(t, err, ErrInvalidRouting)
}

// TestFactory_RegisterFactory 测试自定义路由工厂
func TestFactory_RegisterFactory(t *testing.T) {
	f := newTestFactory(t, "A", "A-B", "B-C")
	f.RegisterFactory("Satellite", func(start, end types.NodeID) []types.NodeID {
		return []types.NodeID{start, "SAT", end}
	})

	assert.Equal(t, types.NodeIDs("A", "SAT", "C"), f.RouteNodes("A", "C", "factory=satellite"))
}

// TestFactory_Routes 测试通配记录具体化
func TestFactory_Routes(t *testing.T) {
	reg := topology.NewTestRegistry(t, "A-B")
	require.NoError(t, reg.AddRoute(types.RouteRecord{Start: "*", End: "*", Descriptor: "x"}))
	f := newTestFactoryWith(t, "A", reg, NewMockDedupCache())

	same := f.Routes("A", "A")
	require.Len(t, same, 1)
	assert.Equal(t, "nodes=A", same[0].Descriptor)

	other := f.Routes("A", "B")
	require.Len(t, other, 1)
	assert.Equal(t, "factory=dynamic", other[0].Descriptor)
	assert.Equal(t, types.NodeID("A"), other[0].Start)
	assert.Equal(t, types.NodeID("B"), other[0].End)
}

// TestFactory_RouteTo 测试到目标节点的静态路由
func TestFactory_RouteTo(t *testing.T) {
	reg := topology.NewTestRegistry(t, "A-B", "B-C", "A-D", "D-C")
	f := newTestFactoryWith(t, "A", reg, NewMockDedupCache())

	// 没有预计算路由时使用最短路径
	r := f.RouteTo("C")
	assert.Equal(t, types.NodeIDs("A", "B", "C"), r.Nodes())
	assert.Equal(t, 0, r.CurrentIndex())

	// 预计算路由按 Ordinal 选择
	require.NoError(t, reg.AddRoute(types.RouteRecord{Start: "A", End: "C", Ordinal: 5, Descriptor: "nodes=A,B,C"}))
	require.NoError(t, reg.AddRoute(types.RouteRecord{Start: "A", End: "C", Ordinal: 1, Descriptor: "nodes=A,D,C"}))
	assert.Equal(t, types.NodeIDs("A", "D", "C"), f.RouteTo("C").Nodes())

	// 不可达时退化为点对点
	assert.Equal(t, types.NodeIDs("A", "Q"), f.RouteTo("Q").Nodes())
}

// TestNormalizeFactory 测试工厂名称规范化
func TestNormalizeFactory(t *testing.T) {
	assert.Equal(t, "dynamic", normalizeFactory("fabric.bus.routing.DynamicRoutingFactory"))
	assert.Equal(t, "dynamic", normalizeFactory(" Dynamic "))
	assert.Equal(t, "static", normalizeFactory("StaticFactory"))
}
