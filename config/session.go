package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-sessnet/pkg/types"
)

// SessionConfig 每会话配置
type SessionConfig struct {
	// ReadBufferSize 单次系统读调用的缓冲大小
	ReadBufferSize int `json:"read_buffer_size"`

	// RecvQueueCapacity 接收队列初始容量
	RecvQueueCapacity int `json:"recv_queue_capacity"`

	// CompactThreshold 接收队列压实阈值（已消费占比）
	CompactThreshold float64 `json:"compact_threshold"`

	// MaxFrameSize 单帧长度上限（含帧头），0 使用默认值
	MaxFrameSize int `json:"max_frame_size"`

	// SendQueueCapacity 发送队列初始容量
	SendQueueCapacity int `json:"send_queue_capacity"`

	// SendHighWaterMark 发送缓冲高水位，0 表示不限制
	SendHighWaterMark int `json:"send_high_water_mark"`

	// Backpressure 高水位策略："block" 阻塞等待，"fail" 快速失败
	Backpressure string `json:"backpressure"`

	// SerialDispatch 为 true 时同会话的帧按到达顺序串行分发
	SerialDispatch bool `json:"serial_dispatch"`

	// DrainTimeout 优雅关闭时等待发送缓冲排空的上限
	DrainTimeout Duration `json:"drain_timeout"`
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ReadBufferSize:    32 * 1024,
		RecvQueueCapacity: 64 * 1024,
		CompactThreshold:  0.5,
		MaxFrameSize:      0,
		SendQueueCapacity: 64 * 1024,
		SendHighWaterMark: 1024 * 1024,
		Backpressure:      "block",
		SerialDispatch:    false,
		DrainTimeout:      Duration(5 * time.Second),
	}
}

// Validate 验证会话配置
func (c *SessionConfig) Validate() error {
	if c.ReadBufferSize <= 0 {
		return errors.New("read_buffer_size must be positive")
	}
	if c.CompactThreshold < 0 || c.CompactThreshold > 1 {
		return errors.New("compact_threshold must be within [0, 1]")
	}
	if c.MaxFrameSize < 0 {
		return errors.New("max_frame_size cannot be negative")
	}
	if c.MaxFrameSize > 0 && c.MaxFrameSize < types.FrameHeaderSize {
		return fmt.Errorf("max_frame_size must be at least %d", types.FrameHeaderSize)
	}
	if c.SendHighWaterMark < 0 {
		return errors.New("send_high_water_mark cannot be negative")
	}
	if _, ok := types.ParseBackpressurePolicy(c.Backpressure); !ok {
		return fmt.Errorf("unknown backpressure policy %q", c.Backpressure)
	}
	if c.DrainTimeout < 0 {
		return errors.New("drain_timeout cannot be negative")
	}
	return nil
}
