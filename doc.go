// Package fabric 提供消息织网节点
//
// 节点把订阅、路由、洪泛去重和出站转发组装在一起：
//
//   - 静态路由：沿预计算路由或最短路径逐跳转发，在终点投递
//   - 洪泛路由：向所有邻居扩散，每个节点首次见到时投递一次
//   - 插件链：入站和出站消息都经过可丢弃消息的插件
//
// # 快速开始
//
//	import "github.com/dep2p/go-fabric"
//
//	node, err := fabric.Start(ctx,
//	    fabric.WithNodeID("A"),
//	    fabric.WithTopologyFile("topology.yaml"),
//	    fabric.WithNATS("nats://127.0.0.1:4222"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	feed := fabric.ParseFeed("plant/sensor/temp")
//	node.Subscribe("dashboard", "", feed)
//	node.SendTo(ctx, "C", feed, []byte("21.5"), fabric.QoSReliable)
//
// # 传输
//
// 配置了 NATS 地址时节点通过 NATS 收发；也可以用 WithTransport 注入任意
// 传输层。两者都没有时节点只能把消息投递给本地订阅者，发往其他节点会失败。
// 投递给本地订阅者的消息始终会交给 OnDeliver 注册的回调。
//
// # 文件组织
//
//	fabric.go          版本信息
//	node.go            Node 及其消息接口
//	node_lifecycle.go  Start / Stop / Close
//	options.go         Option 配置函数
//	fx.go              Fx 模块装配
//	transport.go       本地投递回调与传输适配
//	types.go           公共类型别名
//	errors.go          错误定义
package fabric
