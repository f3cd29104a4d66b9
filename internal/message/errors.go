package message

import "errors"

var (
	// ErrInvalidMessage 消息为空或缺少必要字段
	ErrInvalidMessage = errors.New("message: invalid message")

	// ErrDecode 解码失败
	ErrDecode = errors.New("message: decode failed")

	// ErrNoDecoder 消息携带路由但未提供路由解码器
	ErrNoDecoder = errors.New("message: routing present but no decoder")
)
