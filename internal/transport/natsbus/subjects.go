package natsbus

import (
	"strings"

	"github.com/dep2p/go-fabric/pkg/types"
)

// 消息头
const (
	HeaderFeed = "Fabric-Feed"
	HeaderQoS  = "Fabric-QoS"
)

const hexDigits = "0123456789ABCDEF"

// token 把任意字符串转换为单个主题段
//
// 保留字节、空白和 '%' 转义为 %XX，不同输入得到不同主题段。
// 空串映射为单独的 "%"，转义结果中不会出现这个形式。
func token(s string) string {
	if s == "" {
		return "%"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if reservedByte(c) {
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func reservedByte(c byte) bool {
	switch c {
	case '.', '*', '>', '%':
		return true
	}
	return c <= ' ' || c == 0x7f
}

// NodeSubject 节点主题
func NodeSubject(prefix string, node types.NodeID) string {
	return prefix + ".node." + token(string(node))
}

// SubscriberSubject 订阅者主题
func SubscriberSubject(prefix, actor string, feed types.FeedDescriptor) string {
	return strings.Join([]string{
		prefix, "sub", token(actor),
		token(feed.Platform), token(feed.Service), token(feed.Feed),
	}, ".")
}

// ActorSubjects 匹配 actor 所有订阅的通配主题
func ActorSubjects(prefix, actor string) string {
	return prefix + ".sub." + token(actor) + ".>"
}
