package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/lib/log"
)

var logger = log.Logger("fabric/cmd")

// 全局参数
var (
	configFile string
	logLevel   string
	logFormat  string
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "fabric",
	Short: "消息织网节点与诊断工具",
	Long: `fabric 在节点拓扑上路由 Feed 消息。
静态路由沿预计算路由或最短路径逐跳转发，洪泛路由向全网扩散并去重。`,
	SilenceUsage: true,
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: "node", Title: "节点命令"})
	rootCmd.AddGroup(&cobra.Group{ID: "diag", Title: "诊断命令"})

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件（.json / .yaml）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 debug/info/warn/error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "日志格式 tint/text/json")
}

// loadConfig 加载配置
//
// 优先级（从高到低）：命令行参数、FABRIC_* 环境变量、配置文件、默认值。
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}
	config.ApplyEnv(cfg)
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// setupLogging 按配置设置日志输出
func setupLogging(cfg *config.Config, console io.Writer) (io.Closer, error) {
	return log.Setup(log.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Prefix:  cfg.Node.ID,
		Console: console,
	})
}
