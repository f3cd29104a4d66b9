package message

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

var _ interfaces.Message = (*FeedMessage)(nil)

// FeedMessage 总线消息
type FeedMessage struct {
	// ID 全局唯一标识，洪泛去重以它为键
	ID types.MessageID

	// Feed 所属 Feed
	Feed types.FeedDescriptor

	// QoS 服务质量
	QoS types.QoS

	// Properties 应用属性
	Properties map[string]string

	// Payload 负载
	Payload []byte

	// Routing 路由状态，可为 nil
	Routing interfaces.Routing
}

// New 创建消息并分配新的 ID
func New(feed types.FeedDescriptor, payload []byte, qos types.QoS) *FeedMessage {
	return &FeedMessage{
		ID:      NewID(),
		Feed:    feed,
		QoS:     qos,
		Payload: payload,
	}
}

// NewID 生成消息 ID
func NewID() types.MessageID {
	return types.MessageID(uuid.NewString())
}

// UID 实现 interfaces.Message
func (m *FeedMessage) UID() types.MessageID {
	return m.ID
}

// Property 读取属性
func (m *FeedMessage) Property(key string) (string, bool) {
	v, ok := m.Properties[key]
	return v, ok
}

// SetProperty 设置属性
func (m *FeedMessage) SetProperty(key, value string) {
	if m.Properties == nil {
		m.Properties = make(map[string]string)
	}
	m.Properties[key] = value
}

// Replicate 深拷贝消息，之后修改原消息不会影响副本
func (m *FeedMessage) Replicate() *FeedMessage {
	if m == nil {
		return nil
	}
	cp := &FeedMessage{
		ID:      m.ID,
		Feed:    m.Feed,
		QoS:     m.QoS,
		Payload: slices.Clone(m.Payload),
	}
	if m.Properties != nil {
		cp.Properties = maps.Clone(m.Properties)
	}
	if m.Routing != nil {
		cp.Routing = m.Routing.Clone()
	}
	return cp
}

// String 用于日志
func (m *FeedMessage) String() string {
	return fmt.Sprintf("FeedMessage{id=%s, feed=%s, qos=%s, bytes=%d}", m.ID, m.Feed, m.QoS, len(m.Payload))
}
