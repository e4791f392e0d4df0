package types

import "errors"

// 公共错误定义
//
// 跨模块边界传递、需要调用方用 errors.Is 判别的错误放在这里。
// 各内部模块的私有错误在各自的 errors.go 中定义。
var (
	// ErrIncompletePacket 缓冲字节不足以构成一个完整帧
	//
	// 提取器返回该错误表示"再等更多字节"，缓冲区未被修改，
	// 不是故障条件。
	ErrIncompletePacket = errors.New("incomplete packet")

	// ErrFrameTooLarge 帧声明长度超过配置的最大帧长
	ErrFrameTooLarge = errors.New("frame exceeds max frame size")

	// ErrFrameCorrupt 帧头非法（声明长度小于帧头长度）
	ErrFrameCorrupt = errors.New("corrupt frame header")

	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = errors.New("session closed")

	// ErrSendBackpressure 发送队列达到高水位且策略为 fail
	//
	// 可恢复条件：调用方可以稍后重试或丢弃该消息。
	ErrSendBackpressure = errors.New("send queue over high-water mark")

	// ErrDuplicateProtocol 协议 ID 重复注册（启动期致命）
	ErrDuplicateProtocol = errors.New("protocol already registered")

	// ErrProtocolNotRegistered 协议 ID 未注册
	//
	// 校验性条件而非致命故障：调用方决定记录日志、丢帧还是关闭会话。
	ErrProtocolNotRegistered = errors.New("protocol not registered")
)
