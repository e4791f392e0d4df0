package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// Invocation 一条预编译调用路径
type Invocation = interfaces.HandlerFunc

// ============================================================================
//                              Table 实现
// ============================================================================

// Table 协议分发表
//
// 注册阶段（Seal 之前）由互斥锁保护；Seal 之后表不再变化，
// 读路径直接访问 map，不取锁。
type Table struct {
	mu          sync.Mutex
	invocations map[types.ProtocolID]Invocation
	sealed      atomic.Bool
}

// NewTable 创建分发表
func NewTable() *Table {
	return &Table{
		invocations: make(map[types.ProtocolID]Invocation),
	}
}

// Register 注册一条调用路径
//
// 重复注册同一协议 ID 返回 types.ErrDuplicateProtocol，
// 属启动期致命错误，由上层在接受流量前失败。
func (t *Table) Register(id types.ProtocolID, inv Invocation) error {
	if inv == nil {
		return fmt.Errorf("%w: protocol %d", ErrNilHandler, id)
	}
	if t.sealed.Load() {
		return ErrTableSealed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.invocations[id]; exists {
		return fmt.Errorf("%w: %d", types.ErrDuplicateProtocol, id)
	}
	t.invocations[id] = inv
	return nil
}

// Seal 结束注册阶段
//
// 之后的 Register 失败，读路径转为无锁。
func (t *Table) Seal() {
	t.sealed.Store(true)
}

// Sealed 检查注册阶段是否已结束
func (t *Table) Sealed() bool {
	return t.sealed.Load()
}

// Lookup 查找协议 ID 对应的调用路径
func (t *Table) Lookup(id types.ProtocolID) (Invocation, bool) {
	if !t.sealed.Load() {
		t.mu.Lock()
		defer t.mu.Unlock()
	}
	inv, ok := t.invocations[id]
	return inv, ok
}

// Invoke 调用协议 ID 绑定的操作
//
// 未注册的 ID 返回 types.ErrProtocolNotRegistered——校验性条件，
// 调用方决定记日志、丢帧还是关闭会话，不得视为不可恢复故障。
func (t *Table) Invoke(ctx context.Context, id types.ProtocolID, sess interfaces.Session, body []byte) (any, error) {
	inv, ok := t.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", types.ErrProtocolNotRegistered, id)
	}
	return inv(ctx, sess, body)
}

// Protocols 返回所有已注册的协议 ID
func (t *Table) Protocols() []types.ProtocolID {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]types.ProtocolID, 0, len(t.invocations))
	for id := range t.invocations {
		ids = append(ids, id)
	}
	return ids
}

// Len 返回已注册协议数量
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.invocations)
}
