package routing

import (
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/lib/log"
	"github.com/dep2p/go-fabric/pkg/types"
)

var logger = log.Logger("routing")

// DynamicFactory 内置的最短路径工厂名称
const DynamicFactory = "dynamic"

// NodesFunc 按起点和终点生成节点序列的路由工厂
type NodesFunc func(start, end types.NodeID) []types.NodeID

// ============================================================================
//                              路由工厂
// ============================================================================

// Factory 创建、重建和解析路由
//
// Factory 持有本地节点的协作者（拓扑、去重缓存、路径查找器），
// 它创建的洪泛路由通过它访问这些协作者。
type Factory struct {
	cfg      *Config
	topology interfaces.TopologyQuery
	dedup    interfaces.DedupCache
	finder   *PathFinder
	recorder Recorder

	mu        sync.RWMutex
	factories map[string]NodesFunc
}

// NewFactory 创建路由工厂，dedup 为 nil 时无法处理洪泛路由
func NewFactory(cfg *Config, topology interfaces.TopologyQuery, dedup interfaces.DedupCache) (*Factory, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if topology == nil {
		return nil, fmt.Errorf("%w: topology is required", ErrInvalidConfig)
	}
	f := &Factory{
		cfg:       cfg.Clone(),
		topology:  topology,
		dedup:     dedup,
		finder:    NewPathFinder(topology, cfg.PathCacheSize, cfg.PathCacheTTL),
		recorder:  nopRecorder{},
		factories: make(map[string]NodesFunc),
	}
	f.factories[DynamicFactory] = f.finder.ShortestPath
	return f, nil
}

// SetRecorder 设置指标记录器
func (f *Factory) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	f.recorder = r
	f.finder.SetRecorder(r)
}

// Local 本地节点
func (f *Factory) Local() types.NodeID { return f.cfg.LocalNode }

// Finder 路径查找器
func (f *Factory) Finder() *PathFinder { return f.finder }

// RegisterFactory 注册命名路由工厂，名称不区分大小写
func (f *Factory) RegisterFactory(name string, fn NodesFunc) {
	f.mu.Lock()
	f.factories[normalizeFactory(name)] = fn
	f.mu.Unlock()
}

// ============================================================================
//                              创建
// ============================================================================

// NewStatic 以本地节点为当前位置创建静态路由
func (f *Factory) NewStatic(nodes []types.NodeID) *StaticRoute {
	return NewStaticRoute(f.Local(), nodes)
}

// NewFlood 创建从本地节点发起的洪泛路由
func (f *Factory) NewFlood(ttl time.Duration, retained bool) (*FloodRoute, error) {
	if f.dedup == nil {
		return nil, ErrNoDedupCache
	}
	return &FloodRoute{
		base:     newBase(interfaces.RoutingFlood),
		factory:  f,
		start:    f.Local(),
		retained: retained,
		ttl:      ttl,
	}, nil
}

// RouteTo 创建从本地节点到 dest 的静态路由
//
// 优先使用预计算路由中 Ordinal 最小的一条，没有时计算最短路径。
func (f *Factory) RouteTo(dest types.NodeID) *StaticRoute {
	local := f.Local()
	desc := "factory=" + DynamicFactory
	if routes := f.Routes(local, dest); len(routes) > 0 {
		desc = routes[0].Descriptor
	}
	return f.NewStatic(f.RouteNodes(local, dest, desc))
}

// ============================================================================
//                              线上重建
// ============================================================================

// Decode 从文档的 path 节点重建路由
func (f *Factory) Decode(path string, doc interfaces.Document) (interfaces.Routing, error) {
	kind, ok := doc.GetString(join(path, fieldType))
	if !ok || kind == "" {
		f.recorder.DecodeFailed()
		return nil, ErrMissingRoutingType
	}

	var (
		r   interfaces.Routing
		err error
	)
	switch interfaces.RoutingType(kind) {
	case interfaces.RoutingStatic:
		r, err = decodeStatic(f.Local(), path, doc)
	case interfaces.RoutingFlood:
		if f.dedup == nil {
			err = ErrNoDedupCache
			break
		}
		r, err = f.decodeFlood(path, doc)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownRoutingType, kind)
	}
	if err != nil {
		f.recorder.DecodeFailed()
		return nil, err
	}
	return r, nil
}

// ============================================================================
//                              路由描述解析
// ============================================================================

// Routes 返回 start -> end 的路由记录
//
// 通配记录被具体化：起点等于终点时为 "nodes=start"，否则使用最短路径工厂。
func (f *Factory) Routes(start, end types.NodeID) []types.RouteRecord {
	records := f.topology.PrecomputedRoutes(start, end)
	for i, rec := range records {
		if rec.Start != types.WildcardNode {
			continue
		}
		rec.Start, rec.End = start, end
		if start == end {
			rec.Descriptor = types.NodesRoute(start)
		} else {
			rec.Descriptor = "factory=" + DynamicFactory
		}
		records[i] = rec
	}
	return records
}

// RouteNodes 将路由描述解析为节点序列
//
// 终点为 $virtual 时只包含起点；描述无法识别时按最短路径处理；
// 结果为空时退化为点对点 [start, end]。
func (f *Factory) RouteNodes(start, end types.NodeID, descriptor string) []types.NodeID {
	var nodes []types.NodeID

	desc := strings.TrimSpace(descriptor)
	lower := strings.ToLower(desc)
	switch {
	case end == types.VirtualNodeID:
		return []types.NodeID{start}
	case strings.HasPrefix(lower, "nodes="):
		for _, n := range strings.Split(desc[len("nodes="):], ",") {
			if n = strings.TrimSpace(n); n != "" {
				nodes = append(nodes, types.NodeID(n))
			}
		}
	case strings.HasPrefix(lower, "factory="):
		nodes = f.fromFactory(desc[len("factory="):], start, end)
	case strings.HasPrefix(desc, "<"):
		var err error
		if nodes, err = UnpackRoute(desc); err != nil {
			logger.Warn("解析打包路由失败", "descriptor", descriptor, "error", err)
		}
	default:
		logger.Warn("无法识别的路由描述，使用最短路径", "descriptor", descriptor, "start", start, "end", end)
		nodes = f.finder.ShortestPath(start, end)
	}

	if len(nodes) == 0 {
		return []types.NodeID{start, end}
	}
	return nodes
}

// packedRoute 打包路由描述：<route><nd to="A"/><nd to="B"/></route>
type packedRoute struct {
	XMLName xml.Name `xml:"route"`
	Nodes   []struct {
		To string `xml:"to,attr"`
	} `xml:"nd"`
}

// UnpackRoute 按顺序取出打包路由描述中的节点
func UnpackRoute(desc string) ([]types.NodeID, error) {
	var r packedRoute
	if err := xml.Unmarshal([]byte(desc), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRouting, err)
	}
	nodes := make([]types.NodeID, 0, len(r.Nodes))
	for _, nd := range r.Nodes {
		if to := strings.TrimSpace(nd.To); to != "" {
			nodes = append(nodes, types.NodeID(to))
		}
	}
	return nodes, nil
}

// PackRoute 生成 UnpackRoute 可解析的打包路由描述
func PackRoute(nodes []types.NodeID) (string, error) {
	var r packedRoute
	for _, n := range nodes {
		r.Nodes = append(r.Nodes, struct {
			To string `xml:"to,attr"`
		}{To: string(n)})
	}
	b, err := xml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *Factory) fromFactory(name string, start, end types.NodeID) []types.NodeID {
	f.mu.RLock()
	fn, ok := f.factories[normalizeFactory(name)]
	f.mu.RUnlock()
	if !ok {
		logger.Warn("未注册的路由工厂", "factory", name, "start", start, "end", end)
		return nil
	}
	return fn(start, end)
}

// normalizeFactory 统一工厂名称："a.b.DynamicRoutingFactory" 和 "Dynamic" 都得到 "dynamic"
func normalizeFactory(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, "routingfactory")
	name = strings.TrimSuffix(name, "factory")
	return name
}
