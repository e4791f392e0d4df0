package metrics

import "go.uber.org/fx"

// Module 计数器 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewCounters),
)
