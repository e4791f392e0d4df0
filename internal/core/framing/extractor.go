package framing

import (
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              默认分帧提取器
// ============================================================================

// DefaultMaxFrameSize 未显式配置时的单帧长度上限（含帧头）
const DefaultMaxFrameSize = 16 << 20

// LengthPrefixExtractor 默认长度前缀分帧提取器
//
// 按 [u32 总长度][u16 协议 ID][消息体] 提取，总长度包含前缀自身。
// 字节不足声明总长时报告 types.ErrIncompletePacket 且不动缓冲；
// 成功时返回的 Frame.Body 是缓冲的别名视图，由调用方 Advance。
type LengthPrefixExtractor struct {
	// MaxFrameSize 允许的最大帧长（含帧头），0 表示不限制
	MaxFrameSize int
}

// 确保实现提取器契约
var _ interfaces.PacketExtractor = (*LengthPrefixExtractor)(nil)

// NewLengthPrefixExtractor 创建默认分帧提取器
//
// maxFrameSize 非正时回退到 DefaultMaxFrameSize：敌意长度前缀
// 的防护始终在线；确需不限帧长的场景直接构造字面量并置零字段。
func NewLengthPrefixExtractor(maxFrameSize int) *LengthPrefixExtractor {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &LengthPrefixExtractor{MaxFrameSize: maxFrameSize}
}

// TakeReceivedPacket 尝试提取一个完整帧
func (e *LengthPrefixExtractor) TakeReceivedPacket(buf interfaces.ReceiveBuffer) (types.Frame, int, error) {
	header, ok := buf.Peek(types.FrameHeaderSize)
	if !ok {
		return types.Frame{}, 0, types.ErrIncompletePacket
	}

	total := int(binary.LittleEndian.Uint32(header[:types.FrameLengthSize]))

	// 声明长度连帧头都装不下，说明帧头非法；
	// 这是协议错误而非"再等等"，否则分帧将永久失步
	if total < types.FrameHeaderSize {
		return types.Frame{}, 0, fmt.Errorf("%w: declared length %d", types.ErrFrameCorrupt, total)
	}

	// 敌意长度前缀不允许钉住内存
	if e.MaxFrameSize > 0 && total > e.MaxFrameSize {
		return types.Frame{}, 0, fmt.Errorf("%w: declared length %d > %d", types.ErrFrameTooLarge, total, e.MaxFrameSize)
	}

	view, ok := buf.TrySlice(total)
	if !ok {
		return types.Frame{}, 0, types.ErrIncompletePacket
	}

	frame := types.Frame{
		Protocol: types.ProtocolID(binary.LittleEndian.Uint16(view[types.FrameLengthSize:types.FrameHeaderSize])),
		Body:     view[types.FrameHeaderSize:],
	}
	return frame, total, nil
}

// ============================================================================
//                              会话感知适配
// ============================================================================

// sessionAdapter 把会话无关提取器适配为会话感知契约
type sessionAdapter struct {
	inner interfaces.PacketExtractor
}

var _ interfaces.SessionPacketExtractor = (*sessionAdapter)(nil)

// AdaptExtractor 把会话无关提取器适配为会话感知提取器
//
// 供会话层统一持有会话感知契约使用；分帧不依赖会话状态时
// 直接忽略会话参数。
func AdaptExtractor(inner interfaces.PacketExtractor) interfaces.SessionPacketExtractor {
	return &sessionAdapter{inner: inner}
}

// TakeReceivedPacket 忽略会话参数，转发给内部提取器
func (a *sessionAdapter) TakeReceivedPacket(buf interfaces.ReceiveBuffer, _ interfaces.Session) (types.Frame, int, error) {
	return a.inner.TakeReceivedPacket(buf)
}
