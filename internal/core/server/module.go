package server

import (
	"go.uber.org/fx"
)

// Params 服务端依赖参数
type Params struct {
	fx.In

	Config Config
	Deps   Deps
}

// provideServer 组装服务端
func provideServer(p Params) *Server {
	return New(p.Config, p.Deps)
}

// Module 服务端 Fx 模块
var Module = fx.Module("server",
	fx.Provide(provideServer),
)
