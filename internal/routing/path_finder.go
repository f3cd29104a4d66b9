package routing

import (
	"container/heap"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// ============================================================================
//                              路径查找器
// ============================================================================

// PathFinder 在可用节点上计算最短路径
//
// 所有边权重为 1。多条等长最短路径时返回字典序最小的一条，
// 因此相同拓扑在任何节点上都得到相同的结果。
// 同一对节点的并发查询只计算一次。
// 缓存条目在读取时检查过期，不占用后台 goroutine。
type PathFinder struct {
	topology interfaces.TopologyQuery
	cache    *lru.Cache[string, cachedPath]
	ttl      time.Duration
	clock    clock.Clock
	flight   singleflight.Group
	recorder Recorder

	// generation 每次 Invalidate 递增，计算期间变化的结果不入缓存
	generation atomic.Uint64
	// genMu 使失效与写入缓存互斥
	genMu sync.Mutex
}

type cachedPath struct {
	path  []types.NodeID
	added time.Time
}

// NewPathFinder 创建路径查找器，cacheSize 为 0 时不缓存，cacheTTL 为 0 时不过期
func NewPathFinder(topology interfaces.TopologyQuery, cacheSize int, cacheTTL time.Duration) *PathFinder {
	pf := &PathFinder{
		topology: topology,
		ttl:      cacheTTL,
		clock:    clock.New(),
		recorder: nopRecorder{},
	}
	if cacheSize > 0 {
		// size > 0 时 lru.New 不会返回错误
		pf.cache, _ = lru.New[string, cachedPath](cacheSize)
	}
	return pf
}

// SetClock 替换缓存过期使用的时钟
func (pf *PathFinder) SetClock(c clock.Clock) {
	if c == nil {
		c = clock.New()
	}
	pf.clock = c
}

// SetRecorder 设置指标记录器
func (pf *PathFinder) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	pf.recorder = r
}

// Invalidate 清空路径缓存，拓扑变化后调用
func (pf *PathFinder) Invalidate() {
	pf.genMu.Lock()
	defer pf.genMu.Unlock()
	pf.generation.Add(1)
	if pf.cache != nil {
		pf.cache.Purge()
	}
}

// ShortestPath 返回 source 到 target 的节点序列（含两端）
//
// 不可达时返回 nil；source == target 时返回只含 target 的序列。
func (pf *PathFinder) ShortestPath(source, target types.NodeID) []types.NodeID {
	if source == target {
		return []types.NodeID{target}
	}

	key := pathKey(source, target)
	if path, ok := pf.cached(key); ok {
		pf.recorder.PathComputed(PathCached)
		return slices.Clone(path)
	}

	gen := pf.generation.Load()
	// 失效后的查询不与失效前的计算合并
	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	v, _, _ := pf.flight.Do(flightKey, func() (any, error) {
		path := pf.dijkstra(source, target)
		if len(path) == 0 {
			pf.recorder.PathComputed(PathUnreachable)
		} else {
			pf.recorder.PathComputed(PathFound)
		}
		pf.store(key, path, gen)
		return path, nil
	})
	return slices.Clone(v.([]types.NodeID))
}

func (pf *PathFinder) store(key string, path []types.NodeID, gen uint64) {
	if pf.cache == nil {
		return
	}
	pf.genMu.Lock()
	defer pf.genMu.Unlock()
	if pf.generation.Load() != gen {
		return
	}
	pf.cache.Add(key, cachedPath{path: path, added: pf.clock.Now()})
}

func (pf *PathFinder) cached(key string) ([]types.NodeID, bool) {
	if pf.cache == nil {
		return nil, false
	}
	e, ok := pf.cache.Get(key)
	if !ok {
		return nil, false
	}
	if pf.ttl > 0 && pf.clock.Since(e.added) >= pf.ttl {
		pf.cache.Remove(key)
		return nil, false
	}
	return e.path, true
}

func pathKey(source, target types.NodeID) string {
	return string(source) + "->" + string(target)
}

// graph 可用节点之间的无向邻接表
func (pf *PathFinder) graph() map[types.NodeID][]types.NodeID {
	available := make(map[types.NodeID]struct{})
	for _, n := range pf.topology.AvailableNodes() {
		available[n] = struct{}{}
	}

	adj := make(map[types.NodeID][]types.NodeID, len(available))
	for n := range available {
		adj[n] = nil
	}
	for _, e := range pf.topology.NeighbourEdges() {
		_, okA := available[e.Node]
		_, okB := available[e.Neighbour]
		if !okA || !okB || e.Node == e.Neighbour {
			continue
		}
		if !slices.Contains(adj[e.Node], e.Neighbour) {
			adj[e.Node] = append(adj[e.Node], e.Neighbour)
		}
		if !slices.Contains(adj[e.Neighbour], e.Node) {
			adj[e.Neighbour] = append(adj[e.Neighbour], e.Node)
		}
	}
	return adj
}

// ============================================================================
//                              Dijkstra 最短路径
// ============================================================================

func (pf *PathFinder) dijkstra(source, target types.NodeID) []types.NodeID {
	adj := pf.graph()
	if _, ok := adj[source]; !ok {
		return nil
	}
	if _, ok := adj[target]; !ok {
		return nil
	}

	const weight = 1

	dist := map[types.NodeID]int{source: 0}
	// 每个节点可能有多个等距前驱
	prev := make(map[types.NodeID][]types.NodeID)
	visited := make(map[types.NodeID]bool)

	pq := &PriorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &Item{node: source, priority: 0})

	reached := false
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*Item)
		current := item.node
		if visited[current] {
			continue
		}
		visited[current] = true

		if current == target {
			reached = true
			break
		}

		for _, n := range adj[current] {
			if visited[n] {
				continue
			}
			alt := dist[current] + weight
			d, seen := dist[n]
			switch {
			case !seen || alt < d:
				dist[n] = alt
				prev[n] = []types.NodeID{current}
				heap.Push(pq, &Item{node: n, priority: alt})
			case alt == d:
				prev[n] = append(prev[n], current)
			}
		}
	}

	if !reached {
		return nil
	}
	return smallestPath(source, target, prev)
}

// smallestPath 在前驱图中选出字典序最小的最短路径
//
// 先从终点反向标记所有位于某条最短路径上的节点，
// 再从起点出发，每一步选择满足条件的最小后继。
func smallestPath(source, target types.NodeID, prev map[types.NodeID][]types.NodeID) []types.NodeID {
	onPath := map[types.NodeID]bool{target: true}
	succ := make(map[types.NodeID][]types.NodeID)
	stack := []types.NodeID{target}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range prev[n] {
			succ[p] = append(succ[p], n)
			if !onPath[p] {
				onPath[p] = true
				stack = append(stack, p)
			}
		}
	}
	if !onPath[source] {
		return nil
	}

	path := []types.NodeID{source}
	for cur := source; cur != target; {
		next := slices.Min(succ[cur])
		path = append(path, next)
		cur = next
	}
	return path
}

// ============================================================================
//                              优先队列
// ============================================================================

// Item 优先队列元素
type Item struct {
	node     types.NodeID
	priority int
	index    int
}

// PriorityQueue 按距离排序的最小堆，距离相同时按节点 ID 排序
type PriorityQueue []*Item

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].node < pq[j].node
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

// Push 实现 heap.Interface
func (pq *PriorityQueue) Push(x any) {
	item := x.(*Item)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

// Pop 实现 heap.Interface
func (pq *PriorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
