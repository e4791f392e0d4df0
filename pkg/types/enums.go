package types

// ============================================================================
//                              SessionState - 会话状态
// ============================================================================

// SessionState 会话状态
//
// 状态机: Connecting → Open → {Draining → Closed | Closed}
type SessionState int32

const (
	// StateConnecting 连接建立中
	StateConnecting SessionState = iota
	// StateOpen 已建立，可收发
	StateOpen
	// StateDraining 关闭中，仅冲刷剩余发送数据
	StateDraining
	// StateClosed 已关闭
	StateClosed
)

// String 返回会话状态的字符串表示
func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接（Acceptor 产生）
	DirInbound
	// DirOutbound 出站连接（Connector 产生）
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              BackpressurePolicy - 背压策略
// ============================================================================

// BackpressurePolicy 发送队列达到高水位后的背压策略
type BackpressurePolicy int

const (
	// BackpressureBlock 阻塞调用方直到队列排空
	BackpressureBlock BackpressurePolicy = iota
	// BackpressureFail 立即返回背压错误
	BackpressureFail
)

// String 返回背压策略的字符串表示
func (p BackpressurePolicy) String() string {
	switch p {
	case BackpressureBlock:
		return "block"
	case BackpressureFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseBackpressurePolicy 从字符串解析背压策略
func ParseBackpressurePolicy(s string) (BackpressurePolicy, bool) {
	switch s {
	case "block", "":
		return BackpressureBlock, true
	case "fail":
		return BackpressureFail, true
	default:
		return BackpressureBlock, false
	}
}
