// Package pipeline 提供每协议的拦截器链
//
// 每个协议 ID 对应一条有序、线性的拦截器链，包裹终端分发调用：
//
//	interceptor₁(dc, next) → interceptor₂(dc, next) → … → 终端处理器
//
// 链在 Compile 时一次性折叠为单个延续值，单次分发的代价与链深
// 成正比，不再分配。执行端到端异步（由调用方的 goroutine 驱动），
// 先后效应顺序与同步执行一致：拦截器的 next 之后逻辑只在其内部
// 全部完成后运行。故障（错误返回与终端边界捕获的 panic）沿已进入
// 的拦截器向外传播，便于其善后逻辑反应，最终上报给调用方。
package pipeline
