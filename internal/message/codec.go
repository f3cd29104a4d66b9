package message

import (
	"encoding/base64"
	"fmt"

	"github.com/dep2p/go-fabric/internal/core/document"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// 线上路径
const (
	PathRoot    = "fab"
	PathID      = "fab/id"
	PathFeed    = "fab/feed"
	PathQoS     = "fab/qos"
	PathProps   = "fab/props"
	PathPayload = "fab/payload"
	PathRouting = "fab/rt"
)

// RoutingDecoder 从文档重建路由状态
type RoutingDecoder interface {
	Decode(path string, doc interfaces.Document) (interfaces.Routing, error)
}

// Embed 把消息写入文档
func Embed(m *FeedMessage, doc interfaces.Document) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}

	if err := doc.Set(PathID, m.ID.String()); err != nil {
		return err
	}
	if !m.Feed.IsZero() {
		if err := doc.Set(PathFeed, m.Feed.String()); err != nil {
			return err
		}
	}
	if err := doc.Set(PathQoS, m.QoS.String()); err != nil {
		return err
	}
	if len(m.Properties) > 0 {
		if err := doc.Set(PathProps, m.Properties); err != nil {
			return err
		}
	}
	if len(m.Payload) > 0 {
		if err := doc.Set(PathPayload, base64.StdEncoding.EncodeToString(m.Payload)); err != nil {
			return err
		}
	}
	if m.Routing != nil {
		if err := m.Routing.Embed(PathRouting, doc); err != nil {
			return fmt.Errorf("embed routing: %w", err)
		}
	}
	return nil
}

// Encode 编码消息为二进制
func Encode(m *FeedMessage) ([]byte, error) {
	doc := document.New()
	if err := Embed(m, doc); err != nil {
		return nil, err
	}
	data, err := doc.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

// Extract 从文档重建消息
//
// 文档中存在路由节点时使用 decoder 重建路由；decoder 为 nil 时返回 ErrNoDecoder。
func Extract(doc interfaces.Document, decoder RoutingDecoder) (*FeedMessage, error) {
	id, ok := doc.GetString(PathID)
	if !ok || id == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidMessage, PathID)
	}

	m := &FeedMessage{ID: types.MessageID(id)}

	if feed, ok := doc.GetString(PathFeed); ok {
		m.Feed = types.ParseFeedDescriptor(feed)
	}
	if qos, ok := doc.GetString(PathQoS); ok {
		m.QoS = types.ParseQoS(qos)
	}
	if props, ok := doc.GetMap(PathProps); ok {
		m.Properties = props
	}
	if payload, ok := doc.GetString(PathPayload); ok {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: payload: %v", ErrDecode, err)
		}
		m.Payload = data
	}

	if doc.Has(PathRouting) {
		if decoder == nil {
			return nil, ErrNoDecoder
		}
		rt, err := decoder.Decode(PathRouting, doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		m.Routing = rt
	}
	return m, nil
}

// Decode 从二进制解码消息
func Decode(data []byte, decoder RoutingDecoder) (*FeedMessage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidMessage)
	}
	doc, err := document.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return Extract(doc, decoder)
}

// DecodeDocument 解码为原始文档，用于诊断
func DecodeDocument(data []byte) (*document.Document, error) {
	doc, err := document.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return doc, nil
}
