package session

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-sessnet/internal/core/bytequeue"
	"github.com/dep2p/go-sessnet/internal/core/metrics"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/lib/log"
	"github.com/dep2p/go-sessnet/pkg/types"
)

var logger = log.Logger("core/session")

// ============================================================================
//                              依赖与回调
// ============================================================================

// Dispatcher 分发入口（由 pipeline.Pipeline 实现）
type Dispatcher interface {
	Dispatch(ctx context.Context, dc *interfaces.DispatchContext) error
}

// Callbacks 会话向宿主上报的回调
type Callbacks struct {
	// OnClosed 物理拆除完成后触发（恰好一次）
	OnClosed func(s *Session)

	// OnFault 分发故障上报
	OnFault interfaces.FaultHandler
}

// Deps 会话依赖集合
type Deps struct {
	Extractor  interfaces.SessionPacketExtractor
	Serializer interfaces.Serializer
	Dispatcher Dispatcher
	Counters   *metrics.Counters
	Clock      clock.Clock
	Callbacks  Callbacks
}

// ============================================================================
//                              Session 实现
// ============================================================================

// Session 一条连接的会话状态机
type Session struct {
	id   types.SessionID
	dir  types.Direction
	conn net.Conn
	cfg  Config

	state  atomic.Int32
	closed atomic.Bool

	// 物理拆除恰好一次
	closeOnce sync.Once

	// 接收侧：单写，无锁
	recvQ *bytequeue.CompactingQueue

	// 发送侧：双缓冲 + 每会话锁
	sendMu   sync.Mutex
	sendCond *sync.Cond
	pending  *bytequeue.Queue // Send 追加
	active   *bytequeue.Queue // 冲刷循环独占
	flushing bool
	flushWG  sync.WaitGroup

	// 能力注册表
	capsMu sync.RWMutex
	caps   map[interfaces.CapabilityKey]any

	extractor  interfaces.SessionPacketExtractor
	serializer interfaces.Serializer
	dispatcher Dispatcher
	counters   *metrics.Counters
	clk        clock.Clock
	cbs        Callbacks

	lastActive atomic.Int64

	// 会话生命周期上下文，关闭时取消，传给处理器
	ctx    context.Context
	cancel context.CancelFunc
}

// 确保实现会话契约
var _ interfaces.Session = (*Session)(nil)

// New 创建会话（初始状态 Connecting）
func New(conn net.Conn, dir types.Direction, cfg Config, deps Deps) *Session {
	if deps.Counters == nil {
		deps.Counters = metrics.NewCounters()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         types.SessionID(uuid.NewString()),
		dir:        dir,
		conn:       conn,
		cfg:        cfg,
		recvQ:      bytequeue.NewCompacting(cfg.RecvQueueCapacity, cfg.CompactThreshold),
		pending:    bytequeue.New(cfg.SendQueueCapacity),
		active:     bytequeue.New(cfg.SendQueueCapacity),
		caps:       make(map[interfaces.CapabilityKey]any),
		extractor:  deps.Extractor,
		serializer: deps.Serializer,
		dispatcher: deps.Dispatcher,
		counters:   deps.Counters,
		clk:        deps.Clock,
		cbs:        deps.Callbacks,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.sendCond = sync.NewCond(&s.sendMu)
	s.state.Store(int32(types.StateConnecting))
	s.touch()
	return s
}

// Start 进入 Open 状态并启动接收循环
//
// 仅对仍处于 Connecting 的会话生效：并发的 Close 先到达时
// 不回退终态，也不再启动接收循环。
func (s *Session) Start() {
	if !s.state.CompareAndSwap(int32(types.StateConnecting), int32(types.StateOpen)) {
		return
	}
	go s.recvLoop()
}

// ============================================================================
//                              访问方法
// ============================================================================

// ID 返回会话标识
func (s *Session) ID() types.SessionID {
	return s.id
}

// State 返回当前状态
func (s *Session) State() types.SessionState {
	return types.SessionState(s.state.Load())
}

// Direction 返回连接方向
func (s *Session) Direction() types.Direction {
	return s.dir
}

// LocalAddr 返回本端地址
func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// RemoteAddr 返回对端地址
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// IsClosed 检查会话是否已（开始）关闭
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// LastActive 返回最近一次收发的时刻（UnixNano）
//
// 供空闲回收器判断。
func (s *Session) LastActive() int64 {
	return s.lastActive.Load()
}

// touch 刷新活跃时刻
func (s *Session) touch() {
	s.lastActive.Store(s.clk.Now().UnixNano())
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭会话（幂等）
//
// 先进入 Draining 等待冲刷循环把已入队字节写完（受 DrainTimeout
// 约束），随后物理关闭传输。对已关闭会话调用是无错误的空操作。
func (s *Session) Close() error {
	s.close(true)
	return nil
}

// closeOnError I/O 失败路径：不等待冲刷
//
// 冲刷循环自身的失败也走这里，因此绝不能等待冲刷完成。
func (s *Session) closeOnError() {
	s.close(false)
}

// close 恰好一次的物理拆除
func (s *Session) close(drain bool) {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		// 唤醒阻塞在背压等待上的发送方，它们将观察到关闭
		s.sendMu.Lock()
		s.sendCond.Broadcast()
		hasBacklog := s.pending.Count()+s.active.Count() > 0
		s.sendMu.Unlock()

		if drain && hasBacklog {
			s.state.Store(int32(types.StateDraining))
			// 写截止时间限定冲刷等待的上限
			if s.cfg.DrainTimeout > 0 {
				_ = s.conn.SetWriteDeadline(s.clk.Now().Add(s.cfg.DrainTimeout))
			}
			s.flushWG.Wait()
		}

		s.state.Store(int32(types.StateClosed))
		s.cancel()
		if err := s.conn.Close(); err != nil {
			logger.Debug("关闭传输失败", "session", s.id.Short(), "error", err)
		}

		s.counters.SessionClosed()
		logger.Debug("会话已关闭", "session", s.id.Short(), "direction", s.dir)

		if s.cbs.OnClosed != nil {
			s.cbs.OnClosed(s)
		}
	})
}
