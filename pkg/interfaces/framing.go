package interfaces

import "github.com/dep2p/go-sessnet/pkg/types"

// ============================================================================
//                              接收缓冲视图
// ============================================================================

// ReceiveBuffer 提取器看到的接收缓冲只读/消费视图
//
// Peek/TrySlice 是纯窥视，不移动游标；Advance 显式提交消费。
// 提取与消费刻意解耦：分发被推迟或失败时缓冲字节不会丢失。
type ReceiveBuffer interface {
	// Count 返回当前缓冲的字节数
	Count() int

	// Peek 返回前 n 字节的只读视图，字节不足时 ok 为 false
	Peek(n int) (view []byte, ok bool)

	// TrySlice 语义同 Peek，是转交给下游处理的规范视图
	//
	// 返回的切片是底层存储的别名，仅在下一次改变缓冲的调用
	//（Advance 越过该区间、扩容或压实）之前有效。
	TrySlice(n int) (view []byte, ok bool)

	// Advance 提交 n 字节的消费，n 大于 Count 时返回错误
	Advance(n int) error
}

// ============================================================================
//                              PacketExtractor 契约
// ============================================================================

// PacketExtractor 会话无关的分帧提取器
//
// 契约：字节不足构成完整帧时返回 types.ErrIncompletePacket，
// 且缓冲区必须保持原样（纯窥视）；成功时由调用方负责 Advance，
// 提取器自身绝不消费缓冲。其他错误视为协议错误，由调用方按策略
// 处理（记日志、丢帧或关闭会话）。
type PacketExtractor interface {
	// TakeReceivedPacket 尝试从缓冲提取一个完整帧
	TakeReceivedPacket(buf ReceiveBuffer) (frame types.Frame, consumed int, err error)
}

// SessionPacketExtractor 会话感知的分帧提取器
//
// 用于分帧依赖每会话协商状态的场景（如握手后的变换）。
type SessionPacketExtractor interface {
	// TakeReceivedPacket 尝试从缓冲提取一个完整帧，可读取会话状态
	TakeReceivedPacket(buf ReceiveBuffer, sess Session) (frame types.Frame, consumed int, err error)
}

// ============================================================================
//                              Serializer 契约
// ============================================================================

// Serializer 出站消息序列化契约（PacketExtractor 的逆向）
type Serializer interface {
	// MakeSendBuffer 把出站消息编码为完整的线格式帧
	MakeSendBuffer(protocol types.ProtocolID, message any) ([]byte, error)
}
