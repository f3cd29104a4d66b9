package config

import (
	"os"
	"strconv"
	"time"
)

// 环境变量名
const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "FABRIC_"

	// EnvNodeID 本地节点标识
	EnvNodeID = "NODE_ID"

	// EnvTopologyFile 拓扑文件
	EnvTopologyFile = "TOPOLOGY_FILE"

	// EnvNATSURL NATS 服务地址
	EnvNATSURL = "NATS_URL"

	// EnvSubjectPrefix NATS 主题前缀
	EnvSubjectPrefix = "SUBJECT_PREFIX"

	// EnvFloodTTL 洪泛默认存活时间，如 10m
	EnvFloodTTL = "FLOOD_TTL"

	// EnvDispatchRate 每秒最大分发数
	EnvDispatchRate = "DISPATCH_RATE"

	// EnvLogLevel 日志级别
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogFile 日志文件
	EnvLogFile = "LOG_FILE"
)

// ApplyEnv 用环境变量覆盖配置
//
// 无法解析的值被忽略。优先级高于配置文件，低于命令行参数。
func ApplyEnv(cfg *Config) {
	ApplyEnvFunc(cfg, os.Getenv)
}

// ApplyEnvFunc 与 ApplyEnv 相同，但从 getenv 读取变量
func ApplyEnvFunc(cfg *Config, getenv func(string) string) {
	get := func(name string) string { return getenv(EnvPrefix + name) }

	if v := get(EnvNodeID); v != "" {
		cfg.Node.ID = v
	}
	if v := get(EnvTopologyFile); v != "" {
		cfg.Topology.File = v
	}
	if v := get(EnvNATSURL); v != "" {
		cfg.Transport.NATSURL = v
	}
	if v := get(EnvSubjectPrefix); v != "" {
		cfg.Transport.SubjectPrefix = v
	}
	if v := get(EnvFloodTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Routing.FloodTTL = Duration(d)
		}
	}
	if v := get(EnvDispatchRate); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Forwarding.DispatchRate = r
		}
	}
	if v := get(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := get(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
}
