package metrics

import "github.com/dep2p/go-fabric/pkg/types"

// Reporter 记录和查询流量
type Reporter interface {
	// LogSent 记录发往 node 的 feed 消息大小
	LogSent(size int64, node types.NodeID, feed types.FeedDescriptor)

	// LogRecv 记录来自 node 的 feed 消息大小，node 未知时为空
	LogRecv(size int64, node types.NodeID, feed types.FeedDescriptor)

	// ForNode 节点流量统计
	ForNode(node types.NodeID) Stats

	// ForFeed Feed 流量统计
	ForFeed(feed types.FeedDescriptor) Stats

	// Totals 总流量统计
	Totals() Stats

	// ByNode 所有节点的流量统计
	ByNode() map[types.NodeID]Stats

	// Reset 重置所有统计
	Reset()
}

var _ Reporter = (*TrafficCounter)(nil)
