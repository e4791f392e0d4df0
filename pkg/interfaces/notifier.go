package interfaces

import "github.com/dep2p/go-sessnet/pkg/types"

// ============================================================================
//                              生命周期通知
// ============================================================================

// SessionNotifier 会话生命周期通知
//
// 供外部集成层（如游戏引擎适配）观察会话开闭。
// 回调在引擎内部 goroutine 上触发，实现必须快速返回，
// 耗时工作自行异步化。
type SessionNotifier interface {
	// SessionOpened 会话进入 Open 状态后触发
	SessionOpened(sess Session)

	// SessionClosed 会话完成物理拆除后触发
	SessionClosed(sess Session)
}

// ============================================================================
//                              故障回调
// ============================================================================

// FaultHandler 分发故障回调
//
// 处理器或拦截器的故障在管道边界被捕获后上报到这里，
// 绝不影响其他会话。sess 可能已经关闭。
type FaultHandler func(sess Session, protocol types.ProtocolID, err error)
