package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// NetworkConfig 网络层配置
type NetworkConfig struct {
	// ListenAddrs 监听地址列表，形如 "0.0.0.0:7000"
	ListenAddrs []string `json:"listen_addrs"`

	// DialTimeout 出站连接建立时限
	DialTimeout Duration `json:"dial_timeout"`

	// IdleTimeout 会话空闲时限，0 表示不回收空闲会话
	IdleTimeout Duration `json:"idle_timeout"`

	// IdleSweepInterval 空闲扫描周期
	IdleSweepInterval Duration `json:"idle_sweep_interval"`

	// MaxSessions 存活会话上限，0 表示不限制
	MaxSessions int `json:"max_sessions"`
}

// DefaultNetworkConfig 返回默认网络配置
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		ListenAddrs:       []string{"0.0.0.0:7000"},
		DialTimeout:       Duration(10 * time.Second),
		IdleTimeout:       0,
		IdleSweepInterval: Duration(30 * time.Second),
		MaxSessions:       0,
	}
}

// Validate 验证网络配置
func (c *NetworkConfig) Validate() error {
	for _, addr := range c.ListenAddrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid listen addr %q: %w", addr, err)
		}
	}
	if c.DialTimeout < 0 {
		return errors.New("dial_timeout cannot be negative")
	}
	if c.IdleTimeout < 0 {
		return errors.New("idle_timeout cannot be negative")
	}
	if c.IdleTimeout > 0 && c.IdleSweepInterval <= 0 {
		return errors.New("idle_sweep_interval must be positive when idle_timeout is set")
	}
	if c.MaxSessions < 0 {
		return errors.New("max_sessions cannot be negative")
	}
	return nil
}
