// Package document 实现线上结构化文档
//
// 文档以 google.golang.org/protobuf 的 structpb.Struct 为底层表示，
// 二进制编码使用确定性的 proto 编码，诊断输出使用 protojson。
//
// 路径使用 "/" 分隔：
//
//	doc := document.New()
//	_ = doc.Set("fab/rt/type", "static")
//	_ = doc.Set("fab/rt/nodes", []string{"A", "B"})
package document
