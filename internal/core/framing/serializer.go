package framing

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              帧构造
// ============================================================================

// BuildFrame 按默认线格式构造完整帧
//
// 所有内建序列化器共用的出站路径：一次分配，帧头原地写入。
func BuildFrame(protocol types.ProtocolID, body []byte) []byte {
	total := types.FrameHeaderSize + len(body)
	frame := make([]byte, total)
	binary.LittleEndian.PutUint32(frame[:types.FrameLengthSize], uint32(total))
	binary.LittleEndian.PutUint16(frame[types.FrameLengthSize:types.FrameHeaderSize], uint16(protocol))
	copy(frame[types.FrameHeaderSize:], body)
	return frame
}

// ============================================================================
//                              RawSerializer
// ============================================================================

// RawSerializer 透传序列化器
//
// 接受 []byte、string 或 encoding.BinaryMarshaler 作为消息体，
// 其余类型在调用时报告 ErrUnsupportedMessage。
type RawSerializer struct{}

// 确保实现序列化器契约
var _ interfaces.Serializer = RawSerializer{}

// MakeSendBuffer 把出站消息编码为完整帧
func (RawSerializer) MakeSendBuffer(protocol types.ProtocolID, message any) ([]byte, error) {
	switch m := message.(type) {
	case nil:
		return BuildFrame(protocol, nil), nil
	case []byte:
		return BuildFrame(protocol, m), nil
	case string:
		return BuildFrame(protocol, []byte(m)), nil
	case encoding.BinaryMarshaler:
		body, err := m.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("marshal binary: %w", err)
		}
		return BuildFrame(protocol, body), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedMessage, message)
	}
}
