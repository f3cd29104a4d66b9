// Package forwarding 实现出站队列和转发工作者
//
// 路由层把 Forward（发往下一跳节点）和 Deliver（投递给本地订阅者）两类出站消息
// 放入 FIFO 队列，由单个工作者按入队顺序取出并调用传输层。
//
// 投递语义为至多一次：发送或投递失败时记录日志并丢弃消息，不重试也不重新入队。
//
// 工作者在队列为空时等待唤醒信号，入队时立即唤醒；空闲间隔作为兜底轮询。
//
// 使用示例：
//
//	svc, _ := forwarding.NewService(forwarding.DefaultConfig(), transport)
//	_ = svc.Start(ctx)
//	defer svc.Stop()
//
//	_ = svc.Forward(msg, "node-b", msg.Feed, msg.QoS)
package forwarding
