package pipeline

import "errors"

var (
	// ErrAlreadyCompiled 链已组合，不再接受 Use
	ErrAlreadyCompiled = errors.New("pipeline already compiled")

	// ErrNotCompiled Dispatch 先于 Compile 调用
	ErrNotCompiled = errors.New("pipeline not compiled")

	// ErrHandlerPanic 终端处理器或拦截器 panic，已在管道边界转为错误
	ErrHandlerPanic = errors.New("handler panicked")
)
