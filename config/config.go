package config

import (
	"errors"
	"fmt"
)

// Config 是会话引擎的完整配置结构
//
// 按功能模块组织：
//   - Network: 监听、拨号与空闲回收
//   - Session: 每会话收发路径
//   - Compression: 帧体压缩
type Config struct {
	// Network 网络层配置
	Network NetworkConfig `json:"network"`

	// Session 会话配置
	Session SessionConfig `json:"session"`

	// Compression 压缩配置
	Compression CompressionConfig `json:"compression"`
}

// CompressionConfig 帧体压缩配置
type CompressionConfig struct {
	// Enabled 出站帧体按需压缩，入站自动解压
	Enabled bool `json:"enabled"`

	// MinSize 小于该长度的帧体不压缩
	MinSize int `json:"min_size"`
}

// DefaultCompressionConfig 返回默认压缩配置
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		Enabled: false,
		MinSize: 512,
	}
}

// Validate 验证压缩配置
func (c *CompressionConfig) Validate() error {
	if c.MinSize < 0 {
		return errors.New("min_size cannot be negative")
	}
	return nil
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Network:     DefaultNetworkConfig(),
		Session:     DefaultSessionConfig(),
		Compression: DefaultCompressionConfig(),
	}
}

// Validate 递归验证所有子配置
//
// 配置错误属于启动期致命错误，应在任何监听或拨号之前暴露。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Compression.Validate(); err != nil {
		return fmt.Errorf("compression: %w", err)
	}
	return nil
}
