package routing

import "errors"

var (
	// ErrUnknownRoutingType 无法识别的路由类型标签
	ErrUnknownRoutingType = errors.New("routing: unknown routing type")

	// ErrMissingRoutingType 缺少路由类型标签
	ErrMissingRoutingType = errors.New("routing: missing routing type")

	// ErrInvalidRouting 路由字段缺失或类型不符
	ErrInvalidRouting = errors.New("routing: invalid routing")

	// ErrInvalidConfig 无效的配置
	ErrInvalidConfig = errors.New("routing: invalid config")

	// ErrNoDedupCache 洪泛路由缺少去重缓存
	ErrNoDedupCache = errors.New("routing: flood routing requires a dedup cache")
)
