package server

import (
	"context"
)

// sweepLoop 空闲回收循环
//
// 按 IdleSweepInterval 扫描注册表，关闭超过 IdleTimeout
// 未收发任何字节的会话。走注入的时钟，便于测试推进时间。
func (s *Server) sweepLoop(ctx context.Context) {
	defer s.loopWG.Done()

	ticker := s.deps.Clock.Ticker(s.cfg.IdleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepIdle()
		}
	}
}

// sweepIdle 执行一轮空闲扫描
func (s *Server) sweepIdle() {
	deadline := s.deps.Clock.Now().Add(-s.cfg.IdleTimeout).UnixNano()

	for _, sess := range s.Sessions() {
		if sess.LastActive() >= deadline {
			continue
		}
		logger.Info("回收空闲会话",
			"session", sess.ID().Short(),
			"remote", sess.RemoteAddr())
		// 空闲会话无积压，优雅关闭即刻完成
		go sess.Close()
	}
}
