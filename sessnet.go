package sessnet

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-sessnet/config"
	"github.com/dep2p/go-sessnet/internal/core/metrics"
	"github.com/dep2p/go-sessnet/internal/core/server"
	"github.com/dep2p/go-sessnet/internal/core/session"
	"github.com/dep2p/go-sessnet/pkg/lib/log"
	"github.com/dep2p/go-sessnet/pkg/types"
)

var logger = log.Logger("sessnet")

// Version 当前版本
const Version = "v0.1.0"

// 启停超时配置
const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// Engine 会话引擎
//
// Engine 是用户与引擎交互的主入口。它是一个门面（Facade），
// 聚合了分发表、拦截器管道、会话宿主与指标计数器，
// 生命周期由内部 Fx 应用驱动。
type Engine struct {
	cfg      *config.Config
	app      *fx.App
	srv      *server.Server
	counters *metrics.Counters

	started atomic.Bool
	closed  atomic.Bool
}

// New 创建引擎
//
// 选项按传入顺序应用。配置、协议注册或管道装配出错时
// 立即返回错误，不留下半初始化的引擎。
func New(opts ...Option) (*Engine, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.logFile != "" {
		if err := log.SetOutputFile(o.logFile); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	}

	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}

	app, err := buildFxApp(cfg, o, e)
	if err != nil {
		return nil, err
	}
	e.app = app

	return e, nil
}

// Start 启动引擎
//
// 启动监听并开始接受连接。阻塞直到全部监听器就绪或超时。
func (e *Engine) Start(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := e.app.Start(startCtx); err != nil {
		e.started.Store(false)
		return fmt.Errorf("engine start: %w", err)
	}

	logger.Info("引擎已启动",
		"version", Version,
		"addrs", e.srv.ListenAddrs())
	return nil
}

// Close 关闭引擎
//
// 停止监听，优雅关闭全部会话。幂等。
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !e.started.Load() {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := e.app.Stop(stopCtx); err != nil {
		return fmt.Errorf("engine stop: %w", err)
	}

	logger.Info("引擎已关闭")
	return nil
}

// Dial 发起出站连接并返回新会话
func (e *Engine) Dial(ctx context.Context, addr string) (*session.Session, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if !e.started.Load() {
		return nil, ErrNotStarted
	}
	return e.srv.Dial(ctx, addr)
}

// Session 按 ID 查找会话
func (e *Engine) Session(id types.SessionID) (*session.Session, error) {
	return e.srv.Session(id)
}

// Sessions 返回全部存活会话的快照
func (e *Engine) Sessions() []*session.Session {
	return e.srv.Sessions()
}

// SessionCount 返回存活会话数
func (e *Engine) SessionCount() int {
	return e.srv.SessionCount()
}

// Broadcast 向全部存活会话发送同一消息
func (e *Engine) Broadcast(protocol types.ProtocolID, message any) error {
	return e.srv.Broadcast(protocol, message)
}

// ListenAddrs 返回实际监听地址
//
// 配置里的 ":0" 端口在此解析为内核分配的真实端口。
func (e *Engine) ListenAddrs() []string {
	return e.srv.ListenAddrs()
}

// Snapshot 返回当前指标读数
func (e *Engine) Snapshot() metrics.Snapshot {
	return e.counters.Snapshot()
}

// Config 返回引擎生效的配置
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// sessionConfig 把外部会话配置换算为内部运行参数
func sessionConfig(c config.SessionConfig) session.Config {
	policy, _ := types.ParseBackpressurePolicy(c.Backpressure)
	return session.Config{
		ReadBufferSize:    c.ReadBufferSize,
		RecvQueueCapacity: c.RecvQueueCapacity,
		CompactThreshold:  c.CompactThreshold,
		SendQueueCapacity: c.SendQueueCapacity,
		SendHighWaterMark: c.SendHighWaterMark,
		Backpressure:      policy,
		SerialDispatch:    c.SerialDispatch,
		DrainTimeout:      c.DrainTimeout.Duration(),
	}
}

// serverConfig 把外部配置换算为宿主运行参数
func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		DialTimeout:       cfg.Network.DialTimeout.Duration(),
		IdleTimeout:       cfg.Network.IdleTimeout.Duration(),
		IdleSweepInterval: cfg.Network.IdleSweepInterval.Duration(),
		MaxSessions:       cfg.Network.MaxSessions,
		Session:           sessionConfig(cfg.Session),
	}
}
