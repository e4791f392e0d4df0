package session

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sessnet/internal/core/dispatch"
	"github.com/dep2p/go-sessnet/internal/core/framing"
	"github.com/dep2p/go-sessnet/internal/core/pipeline"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// makeWireFrame 构造一个线格式帧
func makeWireFrame(protocol uint16, body []byte) []byte {
	total := types.FrameHeaderSize + len(body)
	frame := make([]byte, total)
	binary.LittleEndian.PutUint32(frame[:4], uint32(total))
	binary.LittleEndian.PutUint16(frame[4:6], protocol)
	copy(frame[6:], body)
	return frame
}

// readWireFrame 从连接读取一个完整帧
func readWireFrame(t *testing.T, conn net.Conn) (uint16, []byte) {
	t.Helper()
	header := make([]byte, types.FrameHeaderSize)
	_, err := io.ReadFull(conn, header)
	require.NoError(t, err)

	total := int(binary.LittleEndian.Uint32(header[:4]))
	body := make([]byte, total-types.FrameHeaderSize)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)
	return binary.LittleEndian.Uint16(header[4:6]), body
}

// buildDispatcher 构造单表管道
func buildDispatcher(t *testing.T, regs map[types.ProtocolID]dispatch.Invocation) *pipeline.Pipeline {
	t.Helper()
	tbl := dispatch.NewTable()
	for id, inv := range regs {
		require.NoError(t, tbl.Register(id, inv))
	}
	tbl.Seal()
	p := pipeline.New(tbl)
	require.NoError(t, p.Compile())
	return p
}

// newTestSession 在 net.Pipe 上建会话，返回会话与对端
func newTestSession(t *testing.T, cfg Config, p *pipeline.Pipeline, cbs Callbacks) (*Session, net.Conn) {
	t.Helper()
	local, remote := net.Pipe()

	s := New(local, types.DirInbound, cfg, Deps{
		Extractor:  framing.AdaptExtractor(framing.NewLengthPrefixExtractor(0)),
		Serializer: framing.RawSerializer{},
		Dispatcher: p,
		Callbacks:  cbs,
	})
	t.Cleanup(func() {
		_ = s.Close()
		_ = remote.Close()
	})
	return s, remote
}

// echoDispatcher 把收到的消息体原样发回
func echoDispatcher(t *testing.T, id types.ProtocolID) *pipeline.Pipeline {
	return buildDispatcher(t, map[types.ProtocolID]dispatch.Invocation{
		id: func(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
			return append([]byte(nil), body...), nil
		},
	})
}

// ============================================================================
//                              测试用例
// ============================================================================

// TestSession_EchoRoundTrip 测试完整收发链路
func TestSession_EchoRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	s, remote := newTestSession(t, cfg, echoDispatcher(t, 1), Callbacks{})
	s.Start()
	assert.Equal(t, types.StateOpen, s.State())

	go func() {
		_, _ = remote.Write(makeWireFrame(1, []byte("ping")))
	}()

	id, body := readWireFrame(t, remote)
	assert.Equal(t, uint16(1), id)
	assert.Equal(t, []byte("ping"), body)

	t.Log("✅ 收发链路往返正确")
}

// TestSession_PartialDelivery 测试分片到达只分发一次
func TestSession_PartialDelivery(t *testing.T) {
	var mu sync.Mutex
	var got [][]byte

	p := buildDispatcher(t, map[types.ProtocolID]dispatch.Invocation{
		2: func(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
			mu.Lock()
			got = append(got, append([]byte(nil), body...))
			mu.Unlock()
			return nil, nil
		},
	})

	s, remote := newTestSession(t, DefaultConfig(), p, Callbacks{})
	s.Start()

	wire := makeWireFrame(2, []byte("split across reads"))
	go func() {
		for _, b := range wire {
			_, _ = remote.Write([]byte{b})
			time.Sleep(time.Millisecond / 4)
		}
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 3*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []byte("split across reads"), got[0])
	mu.Unlock()

	t.Log("✅ 逐字节到达恰好一次分发")
}

// TestSession_IdempotentClose 测试幂等关闭
func TestSession_IdempotentClose(t *testing.T) {
	var closedCount int
	var mu sync.Mutex

	cbs := Callbacks{OnClosed: func(*Session) {
		mu.Lock()
		closedCount++
		mu.Unlock()
	}}

	s, _ := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), cbs)
	s.Start()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, types.StateClosed, s.State())
	assert.True(t, s.IsClosed())

	mu.Lock()
	assert.Equal(t, 1, closedCount, "物理拆除恰好一次")
	mu.Unlock()

	t.Log("✅ 重复关闭是无错误空操作")
}

// TestSession_StartAfterClose 测试 Close 先于 Start 时终态不回退
func TestSession_StartAfterClose(t *testing.T) {
	s, _ := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), Callbacks{})

	require.NoError(t, s.Close())
	s.Start()

	assert.Equal(t, types.StateClosed, s.State())
	assert.True(t, s.IsClosed())

	t.Log("✅ 已关闭会话的 Start 是空操作")
}

// TestSession_SendAfterClose 测试关闭后发送快速失败
func TestSession_SendAfterClose(t *testing.T) {
	s, _ := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), Callbacks{})
	s.Start()
	require.NoError(t, s.Close())

	err := s.Send(1, []byte("late"))
	assert.ErrorIs(t, err, types.ErrSessionClosed)

	t.Log("✅ 关闭后 Send 快速失败")
}

// TestSession_PeerReset 测试对端断开只关闭本会话
func TestSession_PeerReset(t *testing.T) {
	closed := make(chan struct{})
	cbs := Callbacks{OnClosed: func(*Session) { close(closed) }}

	s, remote := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), cbs)
	s.Start()

	require.NoError(t, remote.Close())

	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("对端断开未触发关闭")
	}
	assert.Equal(t, types.StateClosed, s.State())

	t.Log("✅ 瞬态 I/O 错误只拆除本会话")
}

// TestSession_CorruptFrameCloses 测试坏帧头关闭会话
func TestSession_CorruptFrameCloses(t *testing.T) {
	closed := make(chan struct{})
	cbs := Callbacks{OnClosed: func(*Session) { close(closed) }}

	s, remote := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), cbs)
	s.Start()

	// 声明长度 2 < 帧头长
	bad := make([]byte, 6)
	binary.LittleEndian.PutUint32(bad[:4], 2)
	go func() { _, _ = remote.Write(bad) }()

	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("坏帧未触发关闭")
	}

	t.Log("✅ 协议错误按策略关闭会话")
}

// TestSession_UnknownProtocolDropsFrame 测试未注册协议丢帧不断连
func TestSession_UnknownProtocolDropsFrame(t *testing.T) {
	s, remote := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), Callbacks{})
	s.Start()

	// 未注册的 99：帧被丢弃，会话保持
	go func() { _, _ = remote.Write(makeWireFrame(99, []byte("x"))) }()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, s.IsClosed())

	// 后续合法帧仍然工作（坏帧未造成失步）
	go func() { _, _ = remote.Write(makeWireFrame(1, []byte("ok"))) }()
	id, body := readWireFrame(t, remote)
	assert.Equal(t, uint16(1), id)
	assert.Equal(t, []byte("ok"), body)

	t.Log("✅ 未注册协议丢帧后分帧不失步")
}

// TestSession_FaultCallback 测试处理器故障上报
func TestSession_FaultCallback(t *testing.T) {
	handlerErr := errors.New("handler blew up")
	faults := make(chan error, 1)

	p := buildDispatcher(t, map[types.ProtocolID]dispatch.Invocation{
		5: func(_ context.Context, _ interfaces.Session, _ []byte) (any, error) {
			return nil, handlerErr
		},
	})
	cbs := Callbacks{OnFault: func(_ interfaces.Session, id types.ProtocolID, err error) {
		faults <- err
	}}

	s, remote := newTestSession(t, DefaultConfig(), p, cbs)
	s.Start()

	go func() { _, _ = remote.Write(makeWireFrame(5, nil)) }()

	select {
	case err := <-faults:
		assert.ErrorIs(t, err, handlerErr)
	case <-time.After(3 * time.Second):
		t.Fatal("故障未上报")
	}

	// 故障不拆除会话
	assert.False(t, s.IsClosed())

	t.Log("✅ 处理器故障经回调上报且不断连")
}

// TestSession_SerialDispatchOrder 测试逐帧分发保持顺序
func TestSession_SerialDispatchOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	p := buildDispatcher(t, map[types.ProtocolID]dispatch.Invocation{
		3: func(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
			mu.Lock()
			order = append(order, string(body))
			mu.Unlock()
			return nil, nil
		},
	})

	cfg := DefaultConfig()
	cfg.SerialDispatch = true
	s, remote := newTestSession(t, cfg, p, Callbacks{})
	s.Start()

	go func() {
		var batch []byte
		for _, m := range []string{"a", "b", "c", "d"} {
			batch = append(batch, makeWireFrame(3, []byte(m))...)
		}
		_, _ = remote.Write(batch)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 4
	}, 3*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
	mu.Unlock()

	t.Log("✅ 逐帧模式保持到达顺序")
}

// TestSession_Capabilities 测试能力注册表
func TestSession_Capabilities(t *testing.T) {
	s, _ := newTestSession(t, DefaultConfig(), echoDispatcher(t, 1), Callbacks{})

	type playerState struct{ name string }
	s.SetCapability("player", &playerState{name: "alice"})

	v, ok := s.Capability("player")
	require.True(t, ok)
	assert.Equal(t, "alice", v.(*playerState).name)

	_, ok = s.Capability("missing")
	assert.False(t, ok)

	t.Log("✅ 能力按键显式查找")
}

// TestSession_DispatchAbortsAfterClose 测试关闭旗标中止在途工作
func TestSession_DispatchAbortsAfterClose(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var ran atomic.Bool

	p := buildDispatcher(t, map[types.ProtocolID]dispatch.Invocation{
		7: func(ctx context.Context, _ interfaces.Session, _ []byte) (any, error) {
			close(entered)
			<-release // 挂起点
			ran.Store(true)
			// 关闭后 ctx 应已取消
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
				return nil, nil
			}
		},
	})

	s, remote := newTestSession(t, DefaultConfig(), p, Callbacks{})
	s.Start()

	go func() { _, _ = remote.Write(makeWireFrame(7, nil)) }()
	<-entered

	// 分发挂起期间关闭：不强行中止，协作式取消
	require.NoError(t, s.Close())
	close(release)

	require.Eventually(t, func() bool { return ran.Load() }, 3*time.Second, 5*time.Millisecond)

	t.Log("✅ 挂起的处理器协作式取消")
}
