package sessnet

import "errors"

var (
	// ErrEngineClosed 引擎已关闭
	ErrEngineClosed = errors.New("engine is closed")

	// ErrNotStarted 引擎尚未启动
	ErrNotStarted = errors.New("engine is not started")
)
