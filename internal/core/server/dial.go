package server

import (
	"context"
	"fmt"
	"net"

	"github.com/dep2p/go-sessnet/internal/core/session"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// Dial 发起出站连接
//
// 建立 TCP 连接后升格为出站会话，纳入同一注册表，
// 与入站会话共享收发路径与生命周期事件。
func (s *Server) Dial(ctx context.Context, addr string) (*session.Session, error) {
	if s.closed.Load() {
		return nil, ErrServerClosed
	}

	if s.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DialTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	// 拨号返回前服务端可能已经关闭
	if s.closed.Load() {
		conn.Close()
		return nil, ErrServerClosed
	}

	s.deps.Counters.SessionDialed()
	sess := s.admitConn(conn, types.DirOutbound)
	if sess == nil {
		return nil, fmt.Errorf("dial %s: session limit reached", addr)
	}

	logger.Debug("出站连接已建立", "addr", addr, "session", sess.ID().Short())
	return sess, nil
}
