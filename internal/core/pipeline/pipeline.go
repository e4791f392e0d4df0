package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-sessnet/internal/core/dispatch"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              Pipeline 实现
// ============================================================================

// Pipeline 按协议组合的拦截器链
//
// Use/UseGlobal 只在 Compile 之前合法；Compile 之后 compiled 表
// 只读，分发路径不取锁。
type Pipeline struct {
	table *dispatch.Table

	mu       sync.Mutex
	global   []interfaces.Interceptor
	perProto map[types.ProtocolID][]interfaces.Interceptor

	compiled    map[types.ProtocolID]interfaces.DispatchFunc
	compiledSet atomic.Bool
}

// New 创建管道
func New(table *dispatch.Table) *Pipeline {
	return &Pipeline{
		table:    table,
		perProto: make(map[types.ProtocolID][]interfaces.Interceptor),
	}
}

// Use 给指定协议追加拦截器（按追加顺序由外向内）
func (p *Pipeline) Use(id types.ProtocolID, ics ...interfaces.Interceptor) error {
	if p.compiledSet.Load() {
		return ErrAlreadyCompiled
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.perProto[id] = append(p.perProto[id], ics...)
	return nil
}

// UseGlobal 追加作用于所有协议的拦截器（位于每协议链之外）
func (p *Pipeline) UseGlobal(ics ...interfaces.Interceptor) error {
	if p.compiledSet.Load() {
		return ErrAlreadyCompiled
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.global = append(p.global, ics...)
	return nil
}

// Compile 把每条链折叠为单个延续值
//
// 对分发表中每个已注册协议组合 全局拦截器 + 协议拦截器 + 终端，
// 组合只发生这一次；之后 Use 失败，Dispatch 无锁。
func (p *Pipeline) Compile() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.compiledSet.Load() {
		return ErrAlreadyCompiled
	}

	compiled := make(map[types.ProtocolID]interfaces.DispatchFunc, p.table.Len())
	for _, id := range p.table.Protocols() {
		inv, ok := p.table.Lookup(id)
		if !ok {
			continue
		}

		fn := terminal()
		chain := append(append([]interfaces.Interceptor{}, p.global...), p.perProto[id]...)
		for i := len(chain) - 1; i >= 0; i-- {
			ic := chain[i]
			next := fn
			fn = func(ctx context.Context, dc *interfaces.DispatchContext) error {
				return ic(ctx, dc, next)
			}
		}
		compiled[id] = withHandler(inv, fn)
	}

	// 先发布完整的表，再置已编译标志：无锁 Dispatch 一旦观察到
	// 标志为真，读到的必然是构建完成的 compiled。
	p.compiled = compiled
	p.compiledSet.Store(true)
	return nil
}

// Dispatch 执行一次分发
//
// 未注册协议 ID 返回 types.ErrProtocolNotRegistered（校验性条件，
// 不进入任何拦截器）。拦截器在 next 之前 panic 时在这里兜底转错误。
func (p *Pipeline) Dispatch(ctx context.Context, dc *interfaces.DispatchContext) (err error) {
	if !p.compiledSet.Load() {
		return ErrNotCompiled
	}

	fn, ok := p.compiled[dc.Protocol]
	if !ok {
		return fmt.Errorf("%w: %d", types.ErrProtocolNotRegistered, dc.Protocol)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return fn(ctx, dc)
}

// withHandler 在链入口填充上下文的终端调用路径
//
// 拦截器由此可以检查 dc.Handler，或在调用 next 之前替换它
// 以改写终端行为。
func withHandler(inv dispatch.Invocation, fn interfaces.DispatchFunc) interfaces.DispatchFunc {
	return func(ctx context.Context, dc *interfaces.DispatchContext) error {
		dc.Handler = inv
		return fn(ctx, dc)
	}
}

// terminal 链的终端：调用上下文携带的处理器
//
// 终端边界捕获处理器 panic 并转为错误，使故障以错误形式
// 沿已进入的拦截器向外传播，其 next 之后的善后逻辑得以运行。
// 非 nil 响应经会话序列化发回。
func terminal() interfaces.DispatchFunc {
	return func(ctx context.Context, dc *interfaces.DispatchContext) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			}
		}()

		resp, err := dc.Handler(ctx, dc.Session, dc.Body)
		if err != nil {
			return err
		}
		if resp != nil && dc.Session != nil {
			return dc.Session.Send(dc.Protocol, resp)
		}
		return nil
	}
}

// ============================================================================
//                              上下文池
// ============================================================================

// 分发上下文对象池：单次分发的上下文不逃逸到池外
var ctxPool = sync.Pool{
	New: func() any { return new(interfaces.DispatchContext) },
}

// AcquireContext 从池中取一个分发上下文
func AcquireContext() *interfaces.DispatchContext {
	return ctxPool.Get().(*interfaces.DispatchContext)
}

// ReleaseContext 归还分发上下文
//
// 调用后上下文不得再被引用。
func ReleaseContext(dc *interfaces.DispatchContext) {
	*dc = interfaces.DispatchContext{}
	ctxPool.Put(dc)
}
