package framing

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// 压缩标志字节：消息体首字节标记其余部分的编码
const (
	bodyRaw        = 0x00
	bodyCompressed = 0x01
)

// ErrBadCompressFlag 压缩标志字节非法
var ErrBadCompressFlag = fmt.Errorf("bad compress flag byte")

// ============================================================================
//                              CompressingSerializer
// ============================================================================

// CompressingSerializer 对消息体做 s2 压缩的序列化器
//
// 包裹任意内层序列化器，取其输出帧的消息体压缩后重新组帧。
// 消息体首字节是压缩标志（raw/s2），其余是负载；
// 入站方向与 pipeline 的解压拦截器（DecompressBody）成对使用。
type CompressingSerializer struct {
	// Inner 内层序列化器
	Inner interfaces.Serializer

	// MinSize 小于该字节数的消息体不压缩（压缩收益为负）
	MinSize int
}

// 确保实现序列化器契约
var _ interfaces.Serializer = (*CompressingSerializer)(nil)

// NewCompressingSerializer 创建压缩序列化器
func NewCompressingSerializer(inner interfaces.Serializer, minSize int) *CompressingSerializer {
	return &CompressingSerializer{Inner: inner, MinSize: minSize}
}

// MakeSendBuffer 把出站消息编码为带压缩标志的完整帧
func (cs *CompressingSerializer) MakeSendBuffer(protocol types.ProtocolID, message any) ([]byte, error) {
	frame, err := cs.Inner.MakeSendBuffer(protocol, message)
	if err != nil {
		return nil, err
	}

	body := frame[types.FrameHeaderSize:]
	if len(body) >= cs.MinSize {
		compressed := s2.Encode(nil, body)
		if len(compressed) < len(body) {
			return BuildFrame(protocol, append([]byte{bodyCompressed}, compressed...)), nil
		}
	}
	return BuildFrame(protocol, append([]byte{bodyRaw}, body...)), nil
}

// DecompressBody 还原带压缩标志的消息体
//
// 供入站解压拦截器使用，是 CompressingSerializer 的逆向。
func DecompressBody(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrBadCompressFlag)
	}
	switch body[0] {
	case bodyRaw:
		return body[1:], nil
	case bodyCompressed:
		out, err := s2.Decode(nil, body[1:])
		if err != nil {
			return nil, fmt.Errorf("s2 decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadCompressFlag, body[0])
	}
}
