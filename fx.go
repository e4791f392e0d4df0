package sessnet

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-sessnet/config"
	"github.com/dep2p/go-sessnet/internal/core/dispatch"
	"github.com/dep2p/go-sessnet/internal/core/framing"
	"github.com/dep2p/go-sessnet/internal/core/metrics"
	"github.com/dep2p/go-sessnet/internal/core/pipeline"
	"github.com/dep2p/go-sessnet/internal/core/server"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 装配顺序（按依赖）：
//  1. 分发表：注册路由与结构化处理器，封板
//  2. 管道：挂接拦截器，编译为每协议的调用链
//  3. 收发件：分帧提取器与序列化器（按配置裹上压缩层）
//  4. 宿主：会话注册表、监听与空闲回收
//
// 生命周期钩子把监听启动挂到 OnStart，宿主关闭挂到 OnStop。
func buildFxApp(cfg *config.Config, o *options, e *Engine) (*fx.App, error) {
	table, err := buildTable(o)
	if err != nil {
		return nil, err
	}

	p, err := buildPipeline(cfg, o, table)
	if err != nil {
		return nil, err
	}

	extractor := o.extractor
	if extractor == nil {
		extractor = framing.AdaptExtractor(framing.NewLengthPrefixExtractor(cfg.Session.MaxFrameSize))
	}

	serializer := o.serializer
	if serializer == nil {
		serializer = framing.RawSerializer{}
	}
	if cfg.Compression.Enabled {
		serializer = framing.NewCompressingSerializer(serializer, cfg.Compression.MinSize)
	}

	app := fx.New(
		fx.Supply(serverConfig(cfg)),
		metrics.Module,
		fx.Provide(func(c *metrics.Counters) server.Deps {
			return server.Deps{
				Extractor:    extractor,
				Serializer:   serializer,
				Dispatcher:   p,
				Counters:     c,
				FaultHandler: o.faultHandler,
			}
		}),
		server.Module,

		fx.Populate(&e.srv, &e.counters),

		fx.Invoke(func(lc fx.Lifecycle, srv *server.Server) {
			for _, n := range o.notifiers {
				srv.Notify(n)
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if len(cfg.Network.ListenAddrs) == 0 {
						return nil
					}
					return srv.Listen(cfg.Network.ListenAddrs...)
				},
				OnStop: func(context.Context) error {
					return srv.Close()
				},
			})
		}),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("assemble engine: %w", err)
	}
	return app, nil
}

// buildTable 注册全部协议并封板
func buildTable(o *options) (*dispatch.Table, error) {
	table := dispatch.NewTable()

	for _, r := range o.routes {
		if err := table.Register(r.id, dispatch.Invocation(r.handler)); err != nil {
			return nil, fmt.Errorf("register protocol %d: %w", r.id, err)
		}
	}
	for _, h := range o.handlers {
		if err := dispatch.BindHandler(table, h); err != nil {
			return nil, fmt.Errorf("bind handler %T: %w", h, err)
		}
	}

	table.Seal()
	return table, nil
}

// buildPipeline 挂接拦截器并编译
func buildPipeline(cfg *config.Config, o *options, table *dispatch.Table) (*pipeline.Pipeline, error) {
	p := pipeline.New(table)

	// 压缩入站侧：解压必须先于业务拦截器看到帧体
	global := o.global
	if cfg.Compression.Enabled {
		global = append([]interfaces.Interceptor{pipeline.Decompress()}, global...)
	}
	if len(global) > 0 {
		if err := p.UseGlobal(global...); err != nil {
			return nil, err
		}
	}

	for id, ics := range o.perProto {
		if err := p.Use(id, ics...); err != nil {
			return nil, fmt.Errorf("interceptors for protocol %d: %w", id, err)
		}
	}

	if err := p.Compile(); err != nil {
		return nil, err
	}
	return p, nil
}
