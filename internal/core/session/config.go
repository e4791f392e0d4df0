package session

import (
	"time"

	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              Config
// ============================================================================

// Config 单会话运行参数
//
// 由服务端配置换算而来，会话生命周期内不变。
type Config struct {
	// ReadBufferSize 每次 Read 的缓冲大小
	ReadBufferSize int

	// RecvQueueCapacity 接收队列初始容量
	RecvQueueCapacity int

	// CompactThreshold 接收队列压实阈值（占容量比例）
	CompactThreshold float64

	// SendQueueCapacity 发送队列初始容量
	SendQueueCapacity int

	// SendHighWaterMark 发送缓冲高水位（字节），0 表示不限制
	SendHighWaterMark int

	// Backpressure 高水位后的背压策略
	Backpressure types.BackpressurePolicy

	// SerialDispatch 逐帧等待分发完成（默认流水线）
	SerialDispatch bool

	// DrainTimeout 优雅关闭时等待冲刷完成的上限
	DrainTimeout time.Duration
}

// DefaultConfig 返回默认会话配置
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:    32 * 1024,
		RecvQueueCapacity: 64 * 1024,
		CompactThreshold:  0.5,
		SendQueueCapacity: 64 * 1024,
		SendHighWaterMark: 1024 * 1024,
		Backpressure:      types.BackpressureBlock,
		SerialDispatch:    false,
		DrainTimeout:      5 * time.Second,
	}
}
