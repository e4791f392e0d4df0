package session

import (
	"errors"

	"github.com/dep2p/go-sessnet/internal/core/pipeline"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              接收循环
// ============================================================================

// recvLoop 接收循环（接收队列的唯一写者）
//
// 读到字节就追加进接收队列，然后反复调用提取器直到报告
// incomplete 或队列耗尽。提取器的"等更多字节"通过返回控制权
// 实现，不是阻塞等待。
func (s *Session) recvLoop() {
	buf := make([]byte, s.cfg.ReadBufferSize)

	for {
		if s.closed.Load() {
			return
		}

		n, err := s.conn.Read(buf)
		if n > 0 {
			s.touch()
			s.counters.LogRecv(int64(n), 0)
			s.recvQ.Append(buf[:n])

			if perr := s.extractFrames(); perr != nil {
				// 协议错误：只关闭本会话，绝不影响其他会话
				s.counters.LogProtocolError()
				logger.Warn("分帧失败，关闭会话",
					"session", s.id.Short(),
					"remote", s.conn.RemoteAddr(),
					"error", perr)
				s.closeOnError()
				return
			}
		}
		if err != nil {
			// 瞬态 I/O 错误（对端重置、EOF）：关闭本会话即可
			if !s.closed.Load() {
				logger.Debug("读取结束",
					"session", s.id.Short(),
					"error", err)
			}
			s.closeOnError()
			return
		}
	}
}

// extractFrames 提取并分发当前缓冲中的所有完整帧
//
// 帧 N 的 Advance 先于帧 N+1 的提取；中途观察到关闭则放弃本次
// 事件的剩余工作，不报错。consumed 只越过已成功分类的字节，
// 一个坏帧不会让后续分帧失步。
func (s *Session) extractFrames() error {
	for {
		if s.closed.Load() {
			return nil
		}

		frame, consumed, err := s.extractor.TakeReceivedPacket(s.recvQ, s)
		if err != nil {
			if errors.Is(err, types.ErrIncompletePacket) {
				return nil
			}
			return err
		}

		s.counters.LogRecv(0, 1)
		s.dispatchFrame(frame)

		if aerr := s.recvQ.Advance(consumed); aerr != nil {
			// 提取器返回的 consumed 超过缓冲，契约被破坏
			return aerr
		}
	}
}

// dispatchFrame 把一帧送入管道
//
// 默认流水线分发：帧 N+1 的分发可在帧 N 未完成时开始。
// 异步分发前必须拷贝消息体——别名视图活不过紧随其后的 Advance。
// SerialDispatch 模式逐帧等待，此时直接传递零拷贝视图。
func (s *Session) dispatchFrame(frame types.Frame) {
	if s.cfg.SerialDispatch {
		s.runDispatch(frame.Protocol, frame.Body)
		return
	}

	body := append([]byte(nil), frame.Body...)
	go s.runDispatch(frame.Protocol, body)
}

// runDispatch 执行一次分发并分类其结果
func (s *Session) runDispatch(id types.ProtocolID, body []byte) {
	// 关闭后的待处理分发直接放弃，不触达已拆除的传输
	if s.closed.Load() {
		return
	}

	dc := pipeline.AcquireContext()
	dc.Protocol = id
	dc.Body = body
	dc.Session = s

	err := s.dispatcher.Dispatch(s.ctx, dc)
	pipeline.ReleaseContext(dc)

	if err == nil {
		return
	}

	switch {
	case errors.Is(err, types.ErrProtocolNotRegistered):
		// 校验性条件：记日志、丢帧，会话继续
		s.counters.LogProtocolError()
		logger.Warn("丢弃未注册协议的帧",
			"session", s.id.Short(),
			"protocol", id)
	case errors.Is(err, types.ErrSessionClosed):
		// 分发期间会话被关闭，静默放弃
	default:
		s.counters.LogDispatchFault()
		if s.cbs.OnFault != nil {
			s.cbs.OnFault(s, id, err)
		}
	}
}
