package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-fabric/internal/core/topology"
	"github.com/dep2p/go-fabric/internal/routing"
	"github.com/dep2p/go-fabric/pkg/types"
)

var routeFlags struct {
	topology   string
	from       string
	to         string
	descriptor string
	json       bool
}

var routeCmd = &cobra.Command{
	Use:     "route",
	Short:   "在拓扑文件上计算路由",
	Long:    "输出 from 到 to 的预计算路由、最短路径以及节点实际会使用的静态路由。",
	GroupID: "diag",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := routeFlags.topology
		if path == "" {
			path = cfg.Topology.File
		}
		if path == "" {
			return errors.New("需要拓扑文件 --topology")
		}
		topo, err := topology.LoadFile(path)
		if err != nil {
			return err
		}
		report, err := computeRoute(topo, types.NodeID(routeFlags.from), types.NodeID(routeFlags.to), routeFlags.descriptor)
		if err != nil {
			return err
		}
		return report.write(cmd.OutOrStdout(), routeFlags.json)
	},
}

func init() {
	f := routeCmd.Flags()
	f.StringVarP(&routeFlags.topology, "topology", "t", "", "拓扑文件（YAML）")
	f.StringVar(&routeFlags.from, "from", "", "起点")
	f.StringVar(&routeFlags.to, "to", "", "终点")
	f.StringVarP(&routeFlags.descriptor, "descriptor", "d", "", "额外解析的路由描述，如 nodes=A,B 或 factory=dynamic")
	f.BoolVar(&routeFlags.json, "json", false, "以 JSON 输出")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(routeCmd)
}

// routeReport 路由计算结果
type routeReport struct {
	From        types.NodeID        `json:"from"`
	To          types.NodeID        `json:"to"`
	Precomputed []types.RouteRecord `json:"precomputed"`
	Shortest    []types.NodeID      `json:"shortest"`
	Route       []types.NodeID      `json:"route"`
	Descriptor  string              `json:"descriptor,omitempty"`
	Resolved    []types.NodeID      `json:"resolved,omitempty"`
}

func computeRoute(topo *topology.Registry, from, to types.NodeID, descriptor string) (*routeReport, error) {
	cfg := routing.DefaultConfig()
	cfg.LocalNode = from
	factory, err := routing.NewFactory(cfg, topo, nil)
	if err != nil {
		return nil, err
	}
	r := &routeReport{
		From:        from,
		To:          to,
		Precomputed: factory.Routes(from, to),
		Shortest:    factory.Finder().ShortestPath(from, to),
		Route:       factory.RouteTo(to).Nodes(),
	}
	if descriptor != "" {
		r.Descriptor = descriptor
		r.Resolved = factory.RouteNodes(from, to, descriptor)
	}
	return r, nil
}

func (r *routeReport) write(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(w, "%s -> %s\n", r.From, r.To)
	if len(r.Precomputed) == 0 {
		fmt.Fprintln(w, "预计算路由: 无")
	}
	for _, rec := range r.Precomputed {
		fmt.Fprintf(w, "预计算路由 #%d: %s\n", rec.Ordinal, rec.Descriptor)
	}
	fmt.Fprintf(w, "最短路径: %s\n", joinNodes(r.Shortest))
	fmt.Fprintf(w, "实际路由: %s\n", joinNodes(r.Route))
	if r.Descriptor != "" {
		fmt.Fprintf(w, "%s: %s\n", r.Descriptor, joinNodes(r.Resolved))
	}
	return nil
}

func joinNodes(nodes []types.NodeID) string {
	if len(nodes) == 0 {
		return "(无)"
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = string(n)
	}
	return strings.Join(parts, " -> ")
}
