package document

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dep2p/go-fabric/pkg/interfaces"
)

var _ interfaces.Document = (*Document)(nil)

// Document 基于 structpb 的结构化文档
//
// Document 不是并发安全的，一个文档只在一条消息的编解码过程中使用。
type Document struct {
	root *structpb.Struct
}

// New 创建空文档
func New() *Document {
	return &Document{root: &structpb.Struct{Fields: map[string]*structpb.Value{}}}
}

// Unmarshal 从二进制数据解码文档
func Unmarshal(data []byte) (*Document, error) {
	root := &structpb.Struct{}
	if err := proto.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if root.Fields == nil {
		root.Fields = map[string]*structpb.Value{}
	}
	return &Document{root: root}, nil
}

// FromJSON 从 JSON 解码文档
func FromJSON(data []byte) (*Document, error) {
	root := &structpb.Struct{}
	if err := protojson.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if root.Fields == nil {
		root.Fields = map[string]*structpb.Value{}
	}
	return &Document{root: root}, nil
}

// Marshal 确定性地编码为二进制
func (d *Document) Marshal() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(d.root)
}

// MarshalJSON 编码为 JSON，用于诊断输出
func (d *Document) MarshalJSON() ([]byte, error) {
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(d.root)
}

// AsMap 返回文档的 Go 原生表示
func (d *Document) AsMap() map[string]any {
	return d.root.AsMap()
}

// ============================================================================
//                              路径访问
// ============================================================================

func splitPath(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, ErrInvalidPath
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return parts, nil
}

func (d *Document) lookup(path string) (*structpb.Value, bool) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	cur := d.root
	for i, p := range parts {
		v, ok := cur.Fields[p]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next := v.GetStructValue()
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// parent 返回 path 的父映射，create 为真时创建缺失的中间节点
func (d *Document) parent(parts []string, create bool) (*structpb.Struct, error) {
	cur := d.root
	for _, p := range parts[:len(parts)-1] {
		v, ok := cur.Fields[p]
		if !ok {
			if !create {
				return nil, nil
			}
			next := &structpb.Struct{Fields: map[string]*structpb.Value{}}
			cur.Fields[p] = structpb.NewStructValue(next)
			cur = next
			continue
		}
		next := v.GetStructValue()
		if next == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotMap, p)
		}
		if next.Fields == nil {
			next.Fields = map[string]*structpb.Value{}
		}
		cur = next
	}
	return cur, nil
}

// Has 路径是否存在
func (d *Document) Has(path string) bool {
	_, ok := d.lookup(path)
	return ok
}

// Set 写入值
func (d *Document) Set(path string, value any) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	v, err := toValue(value)
	if err != nil {
		return err
	}
	parent, err := d.parent(parts, true)
	if err != nil {
		return err
	}
	parent.Fields[parts[len(parts)-1]] = v
	return nil
}

// Delete 删除路径
func (d *Document) Delete(path string) {
	parts, err := splitPath(path)
	if err != nil {
		return
	}
	parent, err := d.parent(parts, false)
	if err != nil || parent == nil {
		return
	}
	delete(parent.Fields, parts[len(parts)-1])
}

// GetString 读取字符串
func (d *Document) GetString(path string) (string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return "", false
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return s.StringValue, true
}

// GetBool 读取布尔值
func (d *Document) GetBool(path string) (bool, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return false, false
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, false
	}
	return b.BoolValue, true
}

// GetInt 读取整数
//
// 数值以 float64 存储，超过 2^53 的整数会丢失精度。
func (d *Document) GetInt(path string) (int64, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return int64(n.NumberValue), true
}

// GetStrings 读取字符串列表，非字符串元素视为类型不匹配
func (d *Document) GetStrings(path string) ([]string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return nil, false
	}
	list := v.GetListValue()
	if list == nil {
		return nil, false
	}
	out := make([]string, 0, len(list.Values))
	for _, item := range list.Values {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, false
		}
		out = append(out, s.StringValue)
	}
	return out, true
}

// GetMap 读取字符串映射，非字符串值视为类型不匹配
func (d *Document) GetMap(path string) (map[string]string, bool) {
	v, ok := d.lookup(path)
	if !ok {
		return nil, false
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, false
	}
	out := make(map[string]string, len(st.Fields))
	for k, item := range st.Fields {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, false
		}
		out[k] = s.StringValue
	}
	return out, true
}

func toValue(value any) (*structpb.Value, error) {
	switch v := value.(type) {
	case string:
		return structpb.NewStringValue(v), nil
	case bool:
		return structpb.NewBoolValue(v), nil
	case int:
		return structpb.NewNumberValue(float64(v)), nil
	case int64:
		return structpb.NewNumberValue(float64(v)), nil
	case float64:
		return structpb.NewNumberValue(v), nil
	case []string:
		values := make([]*structpb.Value, len(v))
		for i, s := range v {
			values[i] = structpb.NewStringValue(s)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case map[string]string:
		fields := make(map[string]*structpb.Value, len(v))
		for k, s := range v {
			fields[k] = structpb.NewStringValue(s)
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}
