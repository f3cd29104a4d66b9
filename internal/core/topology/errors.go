package topology

import "errors"

var (
	// ErrInvalidNode 无效的节点
	ErrInvalidNode = errors.New("topology: invalid node")

	// ErrNodeNotFound 节点未找到
	ErrNodeNotFound = errors.New("topology: node not found")

	// ErrInvalidRoute 无效的路由记录
	ErrInvalidRoute = errors.New("topology: invalid route")
)
