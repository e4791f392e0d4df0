package types

// ============================================================================
//                              SessionID - 会话标识
// ============================================================================

// SessionID 会话唯一标识
//
// 由引擎在会话建立时生成（UUID 字符串形式），
// 在会话的整个生命周期内不变。
type SessionID string

// String 返回会话 ID 的字符串表示
func (id SessionID) String() string {
	return string(id)
}

// Short 返回截断后的会话 ID，用于日志显示
func (id SessionID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// ============================================================================
//                              ProtocolID - 协议标识
// ============================================================================

// ProtocolID 协议标识
//
// 小整数，标识一个帧的消息体应分发到哪个操作。
// 在线格式中占 2 字节（小端序）。
type ProtocolID uint16
