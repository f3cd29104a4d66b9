package fabric

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("fabric: node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("fabric: node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("fabric: node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 传输错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNoTransport 没有可用于发往其他节点的传输层
	ErrNoTransport = errors.New("fabric: no transport to reach node")
)
