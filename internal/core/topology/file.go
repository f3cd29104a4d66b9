package topology

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/dep2p/go-fabric/pkg/types"
)

// File 拓扑文件格式
type File struct {
	Nodes      []NodeEntry           `yaml:"nodes"`
	Neighbours []types.NeighbourEdge `yaml:"neighbours"`
	Routes     []types.RouteRecord   `yaml:"routes"`
}

// NodeEntry 拓扑文件中的节点
type NodeEntry struct {
	ID     types.NodeID `yaml:"id"`
	Status string       `yaml:"status,omitempty"`
}

// LoadFile 从 YAML 文件加载拓扑
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topology: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 从 YAML 数据构建注册表
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("topology: parse: %w", err)
	}
	return f.Build()
}

// Build 根据文件内容构建注册表
func (f *File) Build() (*Registry, error) {
	r := NewRegistry()
	for _, n := range f.Nodes {
		status := types.NodeAvailable
		switch n.Status {
		case "", "available":
		case "unavailable":
			status = types.NodeUnavailable
		default:
			return nil, fmt.Errorf("%w: %s has unknown status %q", ErrInvalidNode, n.ID, n.Status)
		}
		if err := r.AddNode(n.ID, status); err != nil {
			return nil, fmt.Errorf("%w: %q", err, n.ID)
		}
	}
	for _, e := range f.Neighbours {
		if err := r.AddNeighbour(e.Node, e.Neighbour); err != nil {
			return nil, fmt.Errorf("%w: %s-%s", err, e.Node, e.Neighbour)
		}
	}
	for _, rec := range f.Routes {
		if err := r.AddRoute(rec); err != nil {
			return nil, err
		}
	}
	return r, nil
}
