package framing

import "errors"

var (
	// ErrUnsupportedMessage 序列化器不认识的消息类型
	ErrUnsupportedMessage = errors.New("unsupported message type")

	// ErrNotProtoMessage ProtoSerializer 收到非 proto.Message
	ErrNotProtoMessage = errors.New("message is not a proto.Message")
)
