package interfaces

import (
	"context"

	"github.com/dep2p/go-sessnet/pkg/types"
)

// ============================================================================
//                              处理器契约
// ============================================================================

// HandlerFunc 协议操作的规范签名
//
// 注册阶段把处理器类型的每个声明操作编译为一个该签名的直调闭包，
// 稳态分发只做索引查找加直接调用，不做运行时类型检查。
// 返回的非 nil 响应由引擎经绑定的 Serializer 序列化后发回会话。
type HandlerFunc func(ctx context.Context, sess Session, body []byte) (response any, err error)

// ProtocolCarrier 携带协议 ID 元数据的处理器
//
// Protocols 返回 协议 ID → 方法名 的映射；绑定阶段按名称解析
// 方法并断言为 HandlerFunc 签名，签名不符在绑定期失败。
type ProtocolCarrier interface {
	Protocols() map[types.ProtocolID]string
}

// ============================================================================
//                              分发上下文
// ============================================================================

// DispatchContext 单次分发的短生命周期上下文
//
// 以指针在拦截器链中传递，拦截器可读改其字段；
// 不得在创建它的分发调用之外保留（实现使用对象池复用）。
type DispatchContext struct {
	// Protocol 当前帧的协议 ID
	Protocol types.ProtocolID

	// Body 帧消息体（拦截器可替换，如解压变换）
	Body []byte

	// Session 触发分发的会话，出站上下文中可能为 nil
	Session Session

	// Handler 终端处理器调用路径
	//
	// 进入拦截器链之前由管道填充；拦截器可在调用 next 之前
	// 替换它以改写终端行为（如降级、重定向）。
	Handler HandlerFunc
}

// ============================================================================
//                              拦截器契约
// ============================================================================

// DispatchFunc 链中"余下部分"的延续
type DispatchFunc func(ctx context.Context, dc *DispatchContext) error

// Interceptor 拦截器
//
// 包裹终端分发调用的横切逻辑。可以检查/修改上下文、
// 不调用 next 短路（如鉴权失败）、或在 next 返回后继续执行
// （如计时、日志）。链在绑定期一次性组合，单次分发的代价
// 与链深成正比，不再分配。
type Interceptor func(ctx context.Context, dc *DispatchContext, next DispatchFunc) error
