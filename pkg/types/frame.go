package types

// ============================================================================
//                              默认线格式
// ============================================================================

// 默认线格式: [4 字节小端总长度][2 字节小端协议 ID][消息体]
//
// 总长度包含长度前缀自身，即 总长度 = 4 + 2 + len(body)。
const (
	// FrameLengthSize 长度前缀字节数
	FrameLengthSize = 4

	// FrameProtocolSize 协议 ID 字节数
	FrameProtocolSize = 2

	// FrameHeaderSize 帧头总字节数
	FrameHeaderSize = FrameLengthSize + FrameProtocolSize
)

// ============================================================================
//                              Frame - 协议帧
// ============================================================================

// Frame 一个完整的协议帧
//
// Body 可能是接收缓冲区的别名视图（零拷贝路径），
// 仅在对应的 Advance 调用之前有效；需要跨分发保留时必须拷贝。
type Frame struct {
	// Protocol 协议 ID
	Protocol ProtocolID

	// Body 消息体字节
	Body []byte
}

// BodyLen 返回消息体长度
func (f Frame) BodyLen() int {
	return len(f.Body)
}
