package server

import (
	"time"

	"github.com/dep2p/go-sessnet/internal/core/session"
)

// Config 服务端配置
type Config struct {
	// DialTimeout 出站连接建立时限
	DialTimeout time.Duration

	// IdleTimeout 会话空闲时限，0 表示不回收
	IdleTimeout time.Duration

	// IdleSweepInterval 空闲扫描周期
	IdleSweepInterval time.Duration

	// MaxSessions 存活会话上限，0 表示不限制
	MaxSessions int

	// Session 每会话配置
	Session session.Config
}

// DefaultConfig 返回默认服务端配置
func DefaultConfig() Config {
	return Config{
		DialTimeout:       10 * time.Second,
		IdleTimeout:       0,
		IdleSweepInterval: 30 * time.Second,
		MaxSessions:       0,
		Session:           session.DefaultConfig(),
	}
}
