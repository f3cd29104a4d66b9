package routing

import (
	"maps"

	"github.com/dep2p/go-fabric/pkg/interfaces"
)

// 线上字段名
const (
	fieldType     = "type"
	fieldProps    = "props"
	fieldNodes    = "nodes"
	fieldStart    = "start"
	fieldPrevious = "previous"
	fieldRetain   = "retain"
	fieldTTL      = "ttl"
)

// base 所有路由变体共享的状态：类型标签和属性
type base struct {
	kind  interfaces.RoutingType
	props map[string]string
}

func newBase(kind interfaces.RoutingType) base {
	return base{kind: kind, props: make(map[string]string)}
}

// Type 类型标签
func (b *base) Type() interfaces.RoutingType { return b.kind }

// Property 读取属性
func (b *base) Property(key string) (string, bool) {
	v, ok := b.props[key]
	return v, ok
}

// SetProperty 设置属性
func (b *base) SetProperty(key, value string) {
	b.props[key] = value
}

// Properties 返回属性副本
func (b *base) Properties() map[string]string {
	return maps.Clone(b.props)
}

func (b *base) cloneBase() base {
	return base{kind: b.kind, props: maps.Clone(b.props)}
}

// embedBase 写入类型标签和属性
func (b *base) embedBase(path string, doc interfaces.Document) error {
	if err := doc.Set(join(path, fieldType), string(b.kind)); err != nil {
		return err
	}
	doc.Delete(join(path, fieldProps))
	if len(b.props) == 0 {
		return nil
	}
	return doc.Set(join(path, fieldProps), maps.Clone(b.props))
}

// initBase 从文档读取属性
func (b *base) initBase(path string, doc interfaces.Document) {
	if props, ok := doc.GetMap(join(path, fieldProps)); ok {
		b.props = props
	}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "/" + field
}
