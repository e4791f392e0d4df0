package server

import "errors"

var (
	// ErrServerClosed 服务端已关闭
	ErrServerClosed = errors.New("server is closed")

	// ErrNoListenAddr 未提供监听地址
	ErrNoListenAddr = errors.New("no addresses to listen")

	// ErrSessionNotFound 注册表中不存在该会话
	ErrSessionNotFound = errors.New("session not found")
)
