package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-fabric"
	"github.com/dep2p/go-fabric/config"
)

// nodeFlags 启动节点的公共参数
type nodeFlags struct {
	node     string
	nats     string
	topology string
}

func (f *nodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.node, "node", "n", "", "本地节点标识")
	cmd.Flags().StringVar(&f.nats, "nats", "", "NATS 服务地址")
	cmd.Flags().StringVarP(&f.topology, "topology", "t", "", "拓扑文件（YAML）")
}

// apply 命令行参数覆盖配置
func (f *nodeFlags) apply(cfg *config.Config) {
	if f.node != "" {
		cfg.Node.ID = f.node
	}
	if f.nats != "" {
		cfg.Transport.NATSURL = f.nats
	}
	if f.topology != "" {
		cfg.Topology.File = f.topology
	}
}

var runFlags struct {
	nodeFlags
	introspect string
	actor      string
	subscribe  []string
}

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "启动节点",
	Long:    "启动一个节点，订阅指定的 feed 并把收到的消息打印到标准输出，直到收到退出信号。",
	GroupID: "node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		runFlags.apply(cfg)
		if runFlags.introspect != "" {
			cfg.Diagnostics.EnableIntrospect = true
			cfg.Diagnostics.IntrospectAddr = runFlags.introspect
		}

		closer, err := setupLogging(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runNode(ctx, cmd.OutOrStdout(), cfg)
	},
}

func init() {
	runFlags.register(runCmd)
	f := runCmd.Flags()
	f.StringVar(&runFlags.introspect, "introspect", "", "诊断服务监听地址（含 /metrics 与 pprof），如 127.0.0.1:6060")
	f.StringVar(&runFlags.actor, "actor", "cli", "订阅者名称")
	f.StringSliceVarP(&runFlags.subscribe, "subscribe", "s", nil, "订阅的 feed（platform/service/feed），可重复")
	rootCmd.AddCommand(runCmd)
}

func runNode(ctx context.Context, out io.Writer, cfg *config.Config) error {
	logger.Info("启动 fabric 节点", "version", fabric.Version, "commit", fabric.GitCommit, "node", cfg.Node.ID)

	node, err := fabric.Start(ctx,
		fabric.WithConfig(cfg),
		fabric.WithDeliveryHandler(func(_ context.Context, sub fabric.Subscription, msg *fabric.Message) {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", sub.Actor, msg.Feed, msg.ID, msg.Payload)
		}),
	)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	for _, s := range runFlags.subscribe {
		sub, err := node.Subscribe(runFlags.actor, "", fabric.ParseFeed(s))
		if err != nil {
			return err
		}
		logger.Info("已订阅", "feed", sub.Feed, "id", sub.ID)
	}

	fmt.Fprintf(out, "节点 %s 已启动，按 Ctrl+C 退出\n", node.ID())
	<-ctx.Done()
	fmt.Fprintln(out, "正在关闭节点...")
	return nil
}
