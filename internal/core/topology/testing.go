package topology

import (
	"strings"
	"testing"

	"github.com/dep2p/go-fabric/pkg/types"
)

// NewTestRegistry 按边列表构建测试拓扑
//
//	r := topology.NewTestRegistry(t, "A-B", "B-C")
func NewTestRegistry(t testing.TB, edges ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, e := range edges {
		a, b, ok := strings.Cut(e, "-")
		if !ok {
			if err := r.AddNode(types.NodeID(e), types.NodeAvailable); err != nil {
				t.Fatalf("add node %q: %v", e, err)
			}
			continue
		}
		if err := r.AddNeighbour(types.NodeID(a), types.NodeID(b)); err != nil {
			t.Fatalf("add edge %q: %v", e, err)
		}
	}
	return r
}
