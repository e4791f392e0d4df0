package session

import (
	"fmt"

	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              发送路径
// ============================================================================

// Send 序列化消息并投入发送队列
//
// 可被多个分发完成体并发调用；序列化在锁外，入队与冲刷调度
// 在每会话锁内。发送积压达到高水位时按配置策略：阻塞等待排空，
// 或返回 types.ErrSendBackpressure 快速失败。
func (s *Session) Send(protocol types.ProtocolID, message any) error {
	if s.closed.Load() {
		return types.ErrSessionClosed
	}

	buf, err := s.serializer.MakeSendBuffer(protocol, message)
	if err != nil {
		return fmt.Errorf("serialize protocol %d: %w", protocol, err)
	}

	s.sendMu.Lock()

	for s.overHighWater() {
		s.counters.LogBackpressure()
		if s.cfg.Backpressure == types.BackpressureFail {
			s.sendMu.Unlock()
			return types.ErrSendBackpressure
		}
		// 阻塞直到冲刷循环排空或会话关闭
		s.sendCond.Wait()
		if s.closed.Load() {
			s.sendMu.Unlock()
			return types.ErrSessionClosed
		}
	}

	s.pending.Append(buf)
	s.counters.LogSent(int64(len(buf)), 1)

	// 无在途冲刷时武装一个
	if !s.flushing {
		s.flushing = true
		s.flushWG.Add(1)
		go s.flushEntry()
	}
	s.sendMu.Unlock()

	s.touch()
	return nil
}

// overHighWater 检查积压是否已达高水位（须持锁调用）
//
// 只看已入队的积压，不计当前消息自身的长度：单帧超过高水位的
// 大消息在缓冲排空后仍可入队，不会被自己的体积永久挡在门外。
func (s *Session) overHighWater() bool {
	if s.cfg.SendHighWaterMark <= 0 {
		return false
	}
	return s.pending.Count()+s.active.Count() >= s.cfg.SendHighWaterMark
}

// flushEntry 冲刷 goroutine 入口
//
// 先标记完成再走错误关闭，避免 Close 的排水等待与自身死锁。
func (s *Session) flushEntry() {
	err := s.flushLoop()
	s.flushWG.Done()
	if err != nil {
		if !s.closed.Load() {
			logger.Debug("写出失败",
				"session", s.id.Short(),
				"error", err)
		}
		s.closeOnError()
	}
}

// flushLoop 冲刷循环
//
// 双缓冲交换：锁内把 pending 换成 active，锁外把 active 的连续
// 字节一次性写入传输，不做二次拷贝。active 仅本循环触达，
// 锁外写出不与并发 Append 竞争。部分写 Advance 已达字节后重臂。
func (s *Session) flushLoop() error {
	for {
		s.sendMu.Lock()
		if s.active.Count() == 0 {
			if s.pending.Count() == 0 {
				// 全部排空，解除武装并唤醒背压等待者
				s.flushing = false
				s.sendCond.Broadcast()
				s.sendMu.Unlock()
				return nil
			}
			s.pending, s.active = s.active, s.pending
		}
		view, _ := s.active.TrySlice(s.active.Count())
		s.sendMu.Unlock()

		n, err := s.conn.Write(view)

		s.sendMu.Lock()
		if n > 0 {
			_ = s.active.Advance(n)
			// 有字节离开缓冲，重新评估高水位
			s.sendCond.Broadcast()
		}
		s.sendMu.Unlock()

		if err != nil {
			return err
		}
	}
}

// SendBacklog 返回发送缓冲中尚未写出的字节数
func (s *Session) SendBacklog() int {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.pending.Count() + s.active.Count()
}
