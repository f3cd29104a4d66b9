package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-fabric"
	"github.com/dep2p/go-fabric/pkg/types"
)

var sendFlags struct {
	nodeFlags
	to       string
	flood    bool
	feed     string
	qos      string
	ttl      time.Duration
	retained bool
	wait     time.Duration
}

var sendCmd = &cobra.Command{
	Use:     "send <payload>",
	Short:   "发送一条消息后退出",
	Long:    "启动临时节点，沿静态路由发送到 --to，或以 --flood 洪泛到全网，等待出站队列清空后退出。",
	Args:    cobra.ExactArgs(1),
	GroupID: "node",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendFlags.to == "" && !sendFlags.flood {
			return errors.New("需要 --to 或 --flood")
		}
		qos := types.ParseQoS(sendFlags.qos)
		if qos == types.QoSUnknown {
			return fmt.Errorf("未知的 qos %q", sendFlags.qos)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sendFlags.apply(cfg)
		closer, err := setupLogging(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		node, err := fabric.Start(ctx, fabric.WithConfig(cfg))
		if err != nil {
			return fmt.Errorf("启动失败: %w", err)
		}
		defer func() { _ = node.Close() }()

		feed := fabric.ParseFeed(sendFlags.feed)
		payload := []byte(args[0])
		var msg *fabric.Message
		if sendFlags.flood {
			msg, err = node.Flood(ctx, feed, payload, qos, sendFlags.ttl, sendFlags.retained)
		} else {
			msg, err = node.SendTo(ctx, fabric.NodeID(sendFlags.to), feed, payload, qos)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg.ID)

		return waitDrained(ctx, node, sendFlags.wait)
	},
}

func init() {
	sendFlags.register(sendCmd)
	f := sendCmd.Flags()
	f.StringVar(&sendFlags.to, "to", "", "目标节点")
	f.BoolVar(&sendFlags.flood, "flood", false, "洪泛到全网")
	f.StringVarP(&sendFlags.feed, "feed", "f", "", "feed（platform/service/feed）")
	f.StringVar(&sendFlags.qos, "qos", "default", "服务质量 default/reliable/best_effort")
	f.DurationVar(&sendFlags.ttl, "ttl", 0, "洪泛存活时间，0 使用配置值")
	f.BoolVar(&sendFlags.retained, "retained", false, "洪泛消息的去重记录不过期")
	f.DurationVar(&sendFlags.wait, "wait", 5*time.Second, "等待出站队列清空的最长时间")
	_ = sendCmd.MarkFlagRequired("feed")
	rootCmd.AddCommand(sendCmd)
}

// waitDrained 等待出站队列清空
func waitDrained(ctx context.Context, node *fabric.Node, limit time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		st := node.Stats()
		done := st.Forwarding.Forwarded + st.Forwarding.Delivered + st.Forwarding.Failed
		if st.QueueLen == 0 && done >= st.Forwarding.Enqueued {
			if st.Forwarding.Failed > 0 {
				return fmt.Errorf("%d 条消息发送失败", st.Forwarding.Failed)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("等待出站队列: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
