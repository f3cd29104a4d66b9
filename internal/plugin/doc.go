// Package plugin 实现 Feed 插件分发链
//
// 每一跳在转发或投递消息前依次调用已注册的插件。插件收到当前动作并返回新的动作：
//
//   - Continue 继续处理
//   - Discard 丢弃，但后续插件仍会被调用，可以改回 Continue
//   - DiscardImmediate 立即丢弃，后续插件不再调用
//
// 插件 panic 时视为 DiscardImmediate。
package plugin
