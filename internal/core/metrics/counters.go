// Package metrics 提供引擎运行计数器
//
// 原子计数器实现，收发路径上无锁更新；Snapshot 返回一致性
// 要求宽松的即时读数，供诊断与外部上报使用。
package metrics

import "sync/atomic"

// ============================================================================
//                              Counters 实现
// ============================================================================

// Counters 引擎计数器集合
type Counters struct {
	// 会话计数
	acceptedTotal atomic.Int64
	dialedTotal   atomic.Int64
	openSessions  atomic.Int64

	// 流量计数
	bytesIn   atomic.Int64
	bytesOut  atomic.Int64
	framesIn  atomic.Int64
	framesOut atomic.Int64

	// 异常计数
	dispatchFaults   atomic.Int64
	protocolErrors   atomic.Int64
	backpressureHits atomic.Int64
}

// NewCounters 创建计数器集合
func NewCounters() *Counters {
	return &Counters{}
}

// SessionAccepted 记录一个入站会话
func (c *Counters) SessionAccepted() {
	c.acceptedTotal.Add(1)
	c.openSessions.Add(1)
}

// SessionDialed 记录一个出站会话
func (c *Counters) SessionDialed() {
	c.dialedTotal.Add(1)
	c.openSessions.Add(1)
}

// SessionClosed 记录一个会话关闭
func (c *Counters) SessionClosed() {
	c.openSessions.Add(-1)
}

// LogRecv 记录入站字节与帧
func (c *Counters) LogRecv(bytes int64, frames int64) {
	c.bytesIn.Add(bytes)
	c.framesIn.Add(frames)
}

// LogSent 记录出站字节与帧
func (c *Counters) LogSent(bytes int64, frames int64) {
	c.bytesOut.Add(bytes)
	c.framesOut.Add(frames)
}

// LogDispatchFault 记录一次分发故障
func (c *Counters) LogDispatchFault() {
	c.dispatchFaults.Add(1)
}

// LogProtocolError 记录一次协议错误
func (c *Counters) LogProtocolError() {
	c.protocolErrors.Add(1)
}

// LogBackpressure 记录一次背压命中
func (c *Counters) LogBackpressure() {
	c.backpressureHits.Add(1)
}

// ============================================================================
//                              Snapshot
// ============================================================================

// Snapshot 计数器即时读数
type Snapshot struct {
	AcceptedTotal    int64 `json:"accepted_total"`
	DialedTotal      int64 `json:"dialed_total"`
	OpenSessions     int64 `json:"open_sessions"`
	BytesIn          int64 `json:"bytes_in"`
	BytesOut         int64 `json:"bytes_out"`
	FramesIn         int64 `json:"frames_in"`
	FramesOut        int64 `json:"frames_out"`
	DispatchFaults   int64 `json:"dispatch_faults"`
	ProtocolErrors   int64 `json:"protocol_errors"`
	BackpressureHits int64 `json:"backpressure_hits"`
}

// Snapshot 返回当前读数
//
// 各字段独立原子读取，彼此之间不保证同一时刻。
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		AcceptedTotal:    c.acceptedTotal.Load(),
		DialedTotal:      c.dialedTotal.Load(),
		OpenSessions:     c.openSessions.Load(),
		BytesIn:          c.bytesIn.Load(),
		BytesOut:         c.bytesOut.Load(),
		FramesIn:         c.framesIn.Load(),
		FramesOut:        c.framesOut.Load(),
		DispatchFaults:   c.dispatchFaults.Load(),
		ProtocolErrors:   c.protocolErrors.Load(),
		BackpressureHits: c.backpressureHits.Load(),
	}
}
