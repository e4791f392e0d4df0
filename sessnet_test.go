package sessnet

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sessnet/config"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

func writeFrame(t *testing.T, conn net.Conn, id uint16, body []byte) {
	t.Helper()
	buf := make([]byte, types.FrameHeaderSize+len(body))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(buf)))
	binary.LittleEndian.PutUint16(buf[4:6], id)
	copy(buf[6:], body)
	_, err := conn.Write(buf)
	require.NoError(t, err)
}

func readFrame(t *testing.T, conn net.Conn) (uint16, []byte) {
	t.Helper()
	header := make([]byte, types.FrameHeaderSize)
	_, err := io.ReadFull(conn, header)
	require.NoError(t, err)

	total := int(binary.LittleEndian.Uint32(header[:4]))
	id := binary.LittleEndian.Uint16(header[4:6])
	body := make([]byte, total-types.FrameHeaderSize)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)
	return id, body
}

func echo(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
	return append([]byte(nil), body...), nil
}

// startedEngine 建好并启动一个引擎，测试结束自动关闭
func startedEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(append([]Option{WithListenAddrs("127.0.0.1:0")}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, engine.Start(context.Background()))
	t.Cleanup(func() { engine.Close() })
	return engine
}

// ============================================================================
//                              测试用例
// ============================================================================

// TestEngine_EchoRoundTrip 测试端到端回显
func TestEngine_EchoRoundTrip(t *testing.T) {
	engine := startedEngine(t, WithRoute(1, echo))

	addrs := engine.ListenAddrs()
	require.Len(t, addrs, 1)

	conn, err := net.Dial("tcp", addrs[0])
	require.NoError(t, err)
	defer conn.Close()

	writeFrame(t, conn, 1, []byte("hello"))
	id, body := readFrame(t, conn)
	assert.Equal(t, uint16(1), id)
	assert.Equal(t, []byte("hello"), body)

	// 指标反映这次往返
	snap := engine.Snapshot()
	assert.GreaterOrEqual(t, snap.FramesIn, int64(1))
	assert.GreaterOrEqual(t, snap.FramesOut, int64(1))
	assert.Equal(t, int64(1), snap.AcceptedTotal)

	t.Log("✅ 端到端回显")
}

// pingHandler 结构化处理器：按元数据自动入表
type pingHandler struct{}

func (pingHandler) Protocols() map[types.ProtocolID]string {
	return map[types.ProtocolID]string{
		10: "HandlePing",
	}
}

func (pingHandler) HandlePing(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
	return append([]byte("pong:"), body...), nil
}

// TestEngine_HandlerObject 测试结构化处理器绑定
func TestEngine_HandlerObject(t *testing.T) {
	engine := startedEngine(t, WithHandler(pingHandler{}))

	conn, err := net.Dial("tcp", engine.ListenAddrs()[0])
	require.NoError(t, err)
	defer conn.Close()

	writeFrame(t, conn, 10, []byte("abc"))
	id, body := readFrame(t, conn)
	assert.Equal(t, uint16(10), id)
	assert.Equal(t, []byte("pong:abc"), body)

	t.Log("✅ 结构化处理器入表")
}

// TestEngine_DialBetweenEngines 测试两个引擎互联
func TestEngine_DialBetweenEngines(t *testing.T) {
	srv := startedEngine(t, WithRoute(1, echo))

	got := make(chan []byte, 1)
	client, err := New(
		WithListenAddrs(), // 纯拨号方
		WithRoute(1, func(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
			got <- append([]byte(nil), body...)
			return nil, nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, client.Start(context.Background()))
	defer client.Close()

	assert.Empty(t, client.ListenAddrs())

	sess, err := client.Dial(context.Background(), srv.ListenAddrs()[0])
	require.NoError(t, err)
	require.NoError(t, sess.Send(1, []byte("ping")))

	select {
	case body := <-got:
		assert.Equal(t, []byte("ping"), body)
	case <-time.After(3 * time.Second):
		t.Fatal("等待回显超时")
	}

	t.Log("✅ 引擎互联往返")
}

// TestEngine_CompressionRoundTrip 测试两端压缩透明往返
func TestEngine_CompressionRoundTrip(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Compression.Enabled = true
	cfg.Compression.MinSize = 64

	srv := startedEngine(t, WithConfig(cfg), WithRoute(1, echo))

	clientCfg := config.NewConfig()
	clientCfg.Compression.Enabled = true
	clientCfg.Compression.MinSize = 64

	got := make(chan []byte, 1)
	client, err := New(
		WithConfig(clientCfg),
		WithListenAddrs(),
		WithRoute(1, func(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
			got <- append([]byte(nil), body...)
			return nil, nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, client.Start(context.Background()))
	defer client.Close()

	sess, err := client.Dial(context.Background(), srv.ListenAddrs()[0])
	require.NoError(t, err)

	// 高度可压缩的大帧体
	payload := bytes.Repeat([]byte("sessnet"), 1024)
	require.NoError(t, sess.Send(1, payload))

	select {
	case body := <-got:
		assert.Equal(t, payload, body)
	case <-time.After(3 * time.Second):
		t.Fatal("等待压缩往返超时")
	}

	t.Log("✅ 压缩对业务透明")
}

// faultRecorder 记录分发故障
type faultRecorder struct {
	faults chan error
}

// TestEngine_FaultHandler 测试分发故障上报
func TestEngine_FaultHandler(t *testing.T) {
	rec := &faultRecorder{faults: make(chan error, 1)}

	engine := startedEngine(t,
		WithRoute(2, func(_ context.Context, _ interfaces.Session, _ []byte) (any, error) {
			panic("handler exploded")
		}),
		WithFaultHandler(func(_ interfaces.Session, _ types.ProtocolID, err error) {
			rec.faults <- err
		}),
	)

	conn, err := net.Dial("tcp", engine.ListenAddrs()[0])
	require.NoError(t, err)
	defer conn.Close()

	writeFrame(t, conn, 2, []byte("boom"))

	select {
	case ferr := <-rec.faults:
		assert.Error(t, ferr)
	case <-time.After(3 * time.Second):
		t.Fatal("等待故障上报超时")
	}

	// 处理器崩溃被隔离，会话继续存活
	assert.Equal(t, 1, engine.SessionCount())

	t.Log("✅ 故障隔离并上报")
}

// TestEngine_Lifecycle 测试启停语义
func TestEngine_Lifecycle(t *testing.T) {
	engine, err := New(
		WithListenAddrs("127.0.0.1:0"),
		WithRoute(1, echo),
	)
	require.NoError(t, err)

	// 未启动时拒绝拨号
	_, err = engine.Dial(context.Background(), "127.0.0.1:1")
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, engine.Start(context.Background()))
	// 重复启动幂等
	require.NoError(t, engine.Start(context.Background()))

	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())

	// 关闭后拒绝拨号
	_, err = engine.Dial(context.Background(), "127.0.0.1:1")
	assert.ErrorIs(t, err, ErrEngineClosed)

	t.Log("✅ 启停幂等")
}

// TestEngine_NewRejects 测试装配期错误
func TestEngine_NewRejects(t *testing.T) {
	// 非法配置
	bad := config.NewConfig()
	bad.Session.Backpressure = "drop"
	_, err := New(WithConfig(bad))
	assert.Error(t, err)

	// 协议号重复
	_, err = New(
		WithListenAddrs(),
		WithRoute(1, echo),
		WithRoute(1, echo),
	)
	assert.ErrorIs(t, err, types.ErrDuplicateProtocol)

	// 空处理器
	_, err = New(WithRoute(1, nil))
	assert.Error(t, err)

	t.Log("✅ 装配期错误即时暴露")
}
