package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-fabric/internal/core/metrics"
	"github.com/dep2p/go-fabric/internal/protocol/forwarding"
	"github.com/dep2p/go-fabric/pkg/lib/log"
	"github.com/dep2p/go-fabric/pkg/types"
)

var logger = log.Logger("debug/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:6060"

// ============================================================================
//                              配置
// ============================================================================

// TopologyView 只读拓扑
type TopologyView interface {
	Nodes() []types.NodeID
	Status(id types.NodeID) (types.NodeStatus, bool)
	NeighbourEdges() []types.NeighbourEdge
}

// SubscriptionLister 列出本地订阅，feed 为空时返回全部
type SubscriptionLister interface {
	Subscriptions(feed types.FeedDescriptor) []types.Subscription
}

// ForwardingStats 出站转发统计来源
type ForwardingStats interface {
	Stats() forwarding.Stats
}

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Node 本地节点
	Node types.NodeID

	// 以下组件均为可选
	Topology      TopologyView
	Subscriptions SubscriptionLister
	Forwarding    ForwardingStats
	Traffic       metrics.Reporter
	Gatherer      prometheus.Gatherer

	// CustomHandlers 自定义处理器
	CustomHandlers map[string]http.HandlerFunc
}

// ============================================================================
//                              Server
// ============================================================================

// Server 本地自省 HTTP 服务
type Server struct {
	config Config

	server   *http.Server
	listener net.Listener

	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建自省服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{
		config:    cfg,
		startTime: time.Now(),
	}
}

// Handler 返回服务的路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 方法限定的路由，其他方法由 ServeMux 返回 405
	mux.HandleFunc("GET /debug/introspect", s.handleIntrospect)
	mux.HandleFunc("GET /debug/introspect/node", s.handleNode)
	mux.HandleFunc("GET /debug/introspect/topology", s.handleTopology)
	mux.HandleFunc("GET /debug/introspect/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("GET /debug/introspect/forwarding", s.handleForwarding)
	mux.HandleFunc("GET /debug/introspect/traffic", s.handleTraffic)
	mux.HandleFunc("GET /debug/introspect/runtime", s.handleRuntime)
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.config.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	for path, handler := range s.config.CustomHandlers {
		mux.HandleFunc(path, handler)
	}
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("自省服务异常退出", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	logger.Info("自省服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭自省服务失败", "error", err)
		return err
	}

	s.running = false
	logger.Info("自省服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp     time.Time            `json:"timestamp"`
	Uptime        string               `json:"uptime"`
	Node          *NodeInfo            `json:"node"`
	Topology      *TopologyInfo        `json:"topology,omitempty"`
	Subscriptions []types.Subscription `json:"subscriptions,omitempty"`
	Forwarding    *forwarding.Stats    `json:"forwarding,omitempty"`
	Traffic       *TrafficInfo         `json:"traffic,omitempty"`
	Runtime       *RuntimeInfo         `json:"runtime"`
}

// NodeInfo 节点信息
type NodeInfo struct {
	ID     types.NodeID `json:"id"`
	Status string       `json:"status,omitempty"`
}

// TopologyInfo 拓扑信息
type TopologyInfo struct {
	Nodes      []NodeInfo            `json:"nodes"`
	Neighbours []types.NeighbourEdge `json:"neighbours"`
}

// TrafficInfo 流量信息
type TrafficInfo struct {
	Totals metrics.Stats                  `json:"totals"`
	ByNode map[types.NodeID]metrics.Stats `json:"by_node,omitempty"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// handleIntrospect 处理完整诊断请求
func (s *Server) handleIntrospect(w http.ResponseWriter, _ *http.Request) {

	response := IntrospectResponse{
		Timestamp:     time.Now(),
		Uptime:        time.Since(s.startTime).String(),
		Node:          s.collectNodeInfo(),
		Topology:      s.collectTopologyInfo(),
		Subscriptions: s.collectSubscriptions(),
		Traffic:       s.collectTrafficInfo(),
		Runtime:       s.collectRuntimeInfo(),
	}
	if s.config.Forwarding != nil {
		st := s.config.Forwarding.Stats()
		response.Forwarding = &st
	}

	s.writeJSON(w, response)
}

// handleNode 处理节点信息请求
func (s *Server) handleNode(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.collectNodeInfo())
}

// handleTopology 处理拓扑请求
func (s *Server) handleTopology(w http.ResponseWriter, _ *http.Request) {
	info := s.collectTopologyInfo()
	if info == nil {
		http.Error(w, "Topology not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, info)
}

// handleSubscriptions 处理订阅列表请求，可用 ?feed=platform/service/feed 过滤
func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if s.config.Subscriptions == nil {
		http.Error(w, "Subscriptions not available", http.StatusServiceUnavailable)
		return
	}
	feed := types.ParseFeedDescriptor(r.URL.Query().Get("feed"))
	subs := s.config.Subscriptions.Subscriptions(feed)
	if subs == nil {
		subs = []types.Subscription{}
	}
	s.writeJSON(w, subs)
}

// handleForwarding 处理转发统计请求
func (s *Server) handleForwarding(w http.ResponseWriter, _ *http.Request) {
	if s.config.Forwarding == nil {
		http.Error(w, "Forwarding not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, s.config.Forwarding.Stats())
}

// handleTraffic 处理流量统计请求
func (s *Server) handleTraffic(w http.ResponseWriter, _ *http.Request) {
	info := s.collectTrafficInfo()
	if info == nil {
		info = &TrafficInfo{} // 返回空数据而不是错误
	}
	s.writeJSON(w, info)
}

// handleRuntime 处理运行时信息请求
func (s *Server) handleRuntime(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.collectRuntimeInfo())
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {

	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).String(),
	}

	// 没有转发服务或本地节点不可用时降级
	if s.config.Forwarding == nil {
		health.Status = "degraded"
	} else if s.config.Topology != nil {
		if st, ok := s.config.Topology.Status(s.config.Node); !ok || st != types.NodeAvailable {
			health.Status = "degraded"
		}
	}

	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

func (s *Server) collectNodeInfo() *NodeInfo {
	info := &NodeInfo{ID: s.config.Node}
	if s.config.Topology != nil {
		if st, ok := s.config.Topology.Status(s.config.Node); ok {
			info.Status = st.String()
		}
	}
	return info
}

func (s *Server) collectTopologyInfo() *TopologyInfo {
	if s.config.Topology == nil {
		return nil
	}
	nodes := s.config.Topology.Nodes()
	info := &TopologyInfo{
		Nodes:      make([]NodeInfo, 0, len(nodes)),
		Neighbours: s.config.Topology.NeighbourEdges(),
	}
	for _, n := range nodes {
		ni := NodeInfo{ID: n}
		if st, ok := s.config.Topology.Status(n); ok {
			ni.Status = st.String()
		}
		info.Nodes = append(info.Nodes, ni)
	}
	sort.Slice(info.Nodes, func(i, j int) bool { return info.Nodes[i].ID < info.Nodes[j].ID })
	return info
}

func (s *Server) collectSubscriptions() []types.Subscription {
	if s.config.Subscriptions == nil {
		return nil
	}
	return s.config.Subscriptions.Subscriptions(types.FeedDescriptor{})
}

func (s *Server) collectTrafficInfo() *TrafficInfo {
	if s.config.Traffic == nil {
		return nil
	}
	return &TrafficInfo{
		Totals: s.config.Traffic.Totals(),
		ByNode: s.config.Traffic.ByNode(),
	}
}

func (s *Server) collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// ============================================================================
//                              辅助方法
// ============================================================================

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		logger.Error("JSON 编码失败", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
