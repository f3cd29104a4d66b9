package document

import "errors"

var (
	// ErrInvalidPath 路径为空或包含空段
	ErrInvalidPath = errors.New("document: invalid path")

	// ErrNotMap 路径中间节点不是映射
	ErrNotMap = errors.New("document: path crosses a non-map value")

	// ErrUnsupportedValue 不支持的值类型
	ErrUnsupportedValue = errors.New("document: unsupported value type")

	// ErrDecode 解码失败
	ErrDecode = errors.New("document: decode failed")
)
