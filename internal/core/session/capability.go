package session

import "github.com/dep2p/go-sessnet/pkg/interfaces"

// ============================================================================
//                              能力注册表
// ============================================================================

// SetCapability 挂接能力实例
//
// 能力是构造期挂到会话上的扩展点，按键显式查找，
// 替代运行时类型扫描的动态组件发现。
func (s *Session) SetCapability(key interfaces.CapabilityKey, v any) {
	s.capsMu.Lock()
	defer s.capsMu.Unlock()
	s.caps[key] = v
}

// Capability 按键查找能力实例
func (s *Session) Capability(key interfaces.CapabilityKey) (any, bool) {
	s.capsMu.RLock()
	defer s.capsMu.RUnlock()
	v, ok := s.caps[key]
	return v, ok
}
