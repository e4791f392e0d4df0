package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-sessnet/internal/core/metrics"
	"github.com/dep2p/go-sessnet/internal/core/session"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/lib/log"
	"github.com/dep2p/go-sessnet/pkg/types"
)

var logger = log.Logger("core/server")

// Deps 服务端依赖集合
type Deps struct {
	Extractor    interfaces.SessionPacketExtractor
	Serializer   interfaces.Serializer
	Dispatcher   session.Dispatcher
	Counters     *metrics.Counters
	Clock        clock.Clock
	FaultHandler interfaces.FaultHandler
}

// Server 会话宿主
type Server struct {
	mu sync.RWMutex

	// 注册表：会话 ID -> 会话
	sessions map[types.SessionID]*session.Session

	// 监听器
	listeners []net.Listener

	// 生命周期观察者
	notifiers []interfaces.SessionNotifier

	// 依赖
	deps Deps

	// 配置
	cfg Config

	// 空闲回收控制
	sweepCancel context.CancelFunc

	// Accept 循环与回收器的存活跟踪
	loopWG sync.WaitGroup

	// 状态
	closed atomic.Bool
}

// New 创建服务端
func New(cfg Config, deps Deps) *Server {
	if deps.Counters == nil {
		deps.Counters = metrics.NewCounters()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	s := &Server{
		sessions: make(map[types.SessionID]*session.Session),
		deps:     deps,
		cfg:      cfg,
	}

	if cfg.IdleTimeout > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.sweepCancel = cancel
		s.loopWG.Add(1)
		go s.sweepLoop(ctx)
	}

	return s
}

// Notify 注册会话生命周期观察者
//
// 须在 Listen/Dial 之前完成注册，之后的注册不保证
// 收到已存在会话的事件。
func (s *Server) Notify(n interfaces.SessionNotifier) {
	if n == nil {
		return
	}
	s.mu.Lock()
	s.notifiers = append(s.notifiers, n)
	s.mu.Unlock()
}

// ============================================================================
//                              监听与接入
// ============================================================================

// Listen 监听指定地址
//
// 可传入多个地址，至少一个监听成功即返回 nil。
func (s *Server) Listen(addrs ...string) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if len(addrs) == 0 {
		return ErrNoListenAddr
	}

	var errs []error
	succeeded := 0

	for _, addr := range addrs {
		if err := s.listenAddr(addr); err != nil {
			logger.Warn("监听地址失败", "addr", addr, "error", err)
			errs = append(errs, fmt.Errorf("listen %s: %w", addr, err))
		} else {
			succeeded++
			logger.Debug("监听地址成功", "addr", addr)
		}
	}

	if succeeded == 0 {
		return fmt.Errorf("failed to listen on any address: %v", errs)
	}

	logger.Info("监听成功", "succeeded", succeeded, "total", len(addrs))
	return nil
}

// listenAddr 监听单个地址
func (s *Server) listenAddr(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	s.loopWG.Add(1)
	go s.acceptLoop(ln)

	return nil
}

// ListenAddrs 返回所有监听地址
func (s *Server) ListenAddrs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]string, 0, len(s.listeners))
	for _, ln := range s.listeners {
		addrs = append(addrs, ln.Addr().String())
	}
	return addrs
}

// acceptLoop 接受连接循环
func (s *Server) acceptLoop(ln net.Listener) {
	defer s.loopWG.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			// 关闭监听器导致的退出
			if s.closed.Load() {
				return
			}
			logger.Debug("接受连接失败", "error", err)
			continue
		}

		if s.closed.Load() {
			conn.Close()
			return
		}

		s.deps.Counters.SessionAccepted()
		s.admitConn(conn, types.DirInbound)
	}
}

// admitConn 将原始连接升格为会话并纳入注册表
//
// 上限检查与注册表写入在同一临界区内完成：并发准入不会
// 越过 MaxSessions。
func (s *Server) admitConn(conn net.Conn, dir types.Direction) *session.Session {
	s.mu.Lock()
	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		logger.Warn("会话数达到上限，拒绝连接",
			"remote", conn.RemoteAddr(),
			"limit", s.cfg.MaxSessions)
		conn.Close()
		return nil
	}

	sess := session.New(conn, dir, s.cfg.Session, session.Deps{
		Extractor:  s.deps.Extractor,
		Serializer: s.deps.Serializer,
		Dispatcher: s.deps.Dispatcher,
		Counters:   s.deps.Counters,
		Clock:      s.deps.Clock,
		Callbacks: session.Callbacks{
			OnClosed: s.onSessionClosed,
			OnFault:  s.deps.FaultHandler,
		},
	})
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	logger.Debug("会话已建立",
		"session", sess.ID().Short(),
		"dir", dir,
		"remote", conn.RemoteAddr())

	// 先广播再启动收包，观察者不会错过首帧之前的时机
	s.notifyOpened(sess)
	sess.Start()

	return sess
}

// onSessionClosed 会话拆除回调
func (s *Server) onSessionClosed(sess *session.Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()

	s.notifyClosed(sess)
}

// notifyOpened 广播会话建立事件
func (s *Server) notifyOpened(sess *session.Session) {
	s.mu.RLock()
	notifiers := s.notifiers
	s.mu.RUnlock()

	for _, n := range notifiers {
		n.SessionOpened(sess)
	}
}

// notifyClosed 广播会话关闭事件
func (s *Server) notifyClosed(sess *session.Session) {
	s.mu.RLock()
	notifiers := s.notifiers
	s.mu.RUnlock()

	for _, n := range notifiers {
		n.SessionClosed(sess)
	}
}

// ============================================================================
//                              注册表访问
// ============================================================================

// Session 按 ID 查找会话
func (s *Server) Session(id types.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Sessions 返回全部存活会话的快照
func (s *Server) Sessions() []*session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// SessionCount 返回存活会话数
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Broadcast 向全部存活会话发送同一消息
//
// 单个会话的发送失败不中断广播，最终聚合返回。
func (s *Server) Broadcast(protocol types.ProtocolID, message any) error {
	var errs error
	for _, sess := range s.Sessions() {
		if err := sess.Send(protocol, message); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", sess.ID().Short(), err))
		}
	}
	return errs
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭服务端
//
// 停止监听与空闲回收，并发关闭全部存活会话（各自走优雅排水）。
// 幂等：重复调用返回 ErrServerClosed。
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrServerClosed
	}

	logger.Info("正在关闭服务端")

	if s.sweepCancel != nil {
		s.sweepCancel()
	}

	// 摘下监听器与会话快照，避免持锁调用 Close
	s.mu.Lock()
	listeners := s.listeners
	s.listeners = nil
	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	var errs error
	for _, ln := range listeners {
		if err := ln.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close listener: %w", err))
		}
	}

	var g errgroup.Group
	for _, sess := range sessions {
		sess := sess
		g.Go(func() error {
			if err := sess.Close(); err != nil {
				return fmt.Errorf("close session %s: %w", sess.ID().Short(), err)
			}
			return nil
		})
	}
	errs = multierr.Append(errs, g.Wait())

	s.loopWG.Wait()

	logger.Info("服务端已关闭", "sessions", len(sessions))
	return errs
}

// IsClosed 返回服务端是否已关闭
func (s *Server) IsClosed() bool {
	return s.closed.Load()
}
