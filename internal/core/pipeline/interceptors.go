package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dep2p/go-sessnet/internal/core/framing"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/lib/log"
)

var logger = log.Logger("core/pipeline")

// ============================================================================
//                              内建拦截器
// ============================================================================

// AccessLog 访问日志拦截器
//
// 记录协议 ID、会话、耗时与结果；放在链外层可观察整条链。
func AccessLog() interfaces.Interceptor {
	return func(ctx context.Context, dc *interfaces.DispatchContext, next interfaces.DispatchFunc) error {
		start := time.Now()
		err := next(ctx, dc)

		sessID := "-"
		if dc.Session != nil {
			sessID = dc.Session.ID().Short()
		}
		if err != nil {
			logger.Warn("分发失败",
				"protocol", dc.Protocol,
				"session", sessID,
				"elapsed", time.Since(start),
				"error", err)
			return err
		}
		logger.Debug("分发完成",
			"protocol", dc.Protocol,
			"session", sessID,
			"elapsed", time.Since(start))
		return nil
	}
}

// Recover 崩溃兜底拦截器
//
// 终端处理器的崩溃在管道内已被收口；本拦截器把自身以内
// 任何一层（含后续拦截器）的崩溃也转成错误，放在链外层
// 可为整条链兜底。
func Recover() interfaces.Interceptor {
	return func(ctx context.Context, dc *interfaces.DispatchContext, next interfaces.DispatchFunc) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("拦截器链崩溃",
					"protocol", dc.Protocol,
					"panic", r)
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			}
		}()
		return next(ctx, dc)
	}
}

// Decompress 消息体解压拦截器
//
// 还原 framing.CompressingSerializer 产出的带标志消息体，
// 在终端处理器看到之前替换 dc.Body。
func Decompress() interfaces.Interceptor {
	return func(ctx context.Context, dc *interfaces.DispatchContext, next interfaces.DispatchFunc) error {
		body, err := framing.DecompressBody(dc.Body)
		if err != nil {
			return err
		}
		dc.Body = body
		return next(ctx, dc)
	}
}
