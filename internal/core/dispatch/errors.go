package dispatch

import "errors"

var (
	// ErrTableSealed 注册阶段已结束
	ErrTableSealed = errors.New("dispatch table sealed")

	// ErrMethodNotFound 元数据声明的方法在处理器类型上不存在
	ErrMethodNotFound = errors.New("handler method not found")

	// ErrBadHandlerMethod 处理器方法签名不符合规范签名
	ErrBadHandlerMethod = errors.New("handler method has wrong signature")

	// ErrNilHandler 处理器实例为 nil
	ErrNilHandler = errors.New("nil handler")
)
