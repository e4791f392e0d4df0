package framing

import (
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              ProtoSerializer
// ============================================================================

// ProtoSerializer 以 protobuf 编码消息体的序列化器
//
// 消息必须实现 proto.Message；[]byte 直接透传，
// 便于同一会话上混用已编码帧。
type ProtoSerializer struct{}

// 确保实现序列化器契约
var _ interfaces.Serializer = ProtoSerializer{}

// MakeSendBuffer 把出站消息编码为完整帧
func (ProtoSerializer) MakeSendBuffer(protocol types.ProtocolID, message any) ([]byte, error) {
	switch m := message.(type) {
	case nil:
		return BuildFrame(protocol, nil), nil
	case []byte:
		return BuildFrame(protocol, m), nil
	case proto.Message:
		body, err := proto.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("proto marshal: %w", err)
		}
		return BuildFrame(protocol, body), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotProtoMessage, message)
	}
}
