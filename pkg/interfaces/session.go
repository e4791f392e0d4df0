package interfaces

import (
	"net"

	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              能力注册表
// ============================================================================

// CapabilityKey 会话能力键
//
// 能力是构造期挂接到会话上的扩展点实例，按键显式查找，
// 不做运行时类型扫描。
type CapabilityKey string

// ============================================================================
//                              Session 契约
// ============================================================================

// Session 一条连接的会话契约
//
// 接收侧由会话自己的接收循环单写；Send 可被多个分发完成体
// 并发调用（实现内部以每会话锁保护发送队列）。
type Session interface {
	// ID 返回会话唯一标识
	ID() types.SessionID

	// State 返回当前会话状态
	State() types.SessionState

	// Direction 返回连接方向
	Direction() types.Direction

	// LocalAddr 返回本端地址
	LocalAddr() net.Addr

	// RemoteAddr 返回对端地址
	RemoteAddr() net.Addr

	// Send 序列化消息并投入发送队列，按需调度冲刷
	//
	// 发送队列超过高水位时按配置的背压策略处理：
	// 阻塞直到排空，或立即返回 types.ErrSendBackpressure。
	// 会话关闭后返回 types.ErrSessionClosed。
	Send(protocol types.ProtocolID, message any) error

	// Close 关闭会话（幂等）
	//
	// 先进入 Draining 冲刷剩余发送数据，随后物理关闭传输。
	// 重复调用是无错误的空操作。
	Close() error

	// IsClosed 检查会话是否已（开始）关闭
	IsClosed() bool

	// SetCapability 挂接能力实例
	SetCapability(key CapabilityKey, v any)

	// Capability 按键查找能力实例
	Capability(key CapabilityKey) (any, bool)
}
