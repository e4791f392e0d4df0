// Package session 提供单连接会话状态机
//
// 每个会话拥有一条接收字节队列和一对发送字节队列（双缓冲），
// 运行自己的接收循环与按需启动的冲刷循环。
//
// # 并发模型
//
// 接收队列由会话自己的接收循环单写，该路径无锁；
// 发送队列是唯一需要每会话锁的结构——多个分发完成体可能并发
// 调用 Send。冲刷循环在锁外把 active 队列的连续字节写入传输，
// 不做二次拷贝；部分写从已达位置重臂。
//
// # 关闭
//
// 关闭幂等：无论多少触发源（I/O 失败、显式请求、处理器发起），
// 物理拆除只发生一次。取消是协作式的：关闭置标志位，挂起中的
// 处理器不被强行中止，其后续对该会话的 I/O 空操作或快速失败。
//
// # 分发顺序
//
// 同一会话上，帧 N 的字节 Advance 之前绝不提取帧 N+1，
// 帧 N 的提取完成之前绝不开始 N+1 的提取。默认策略是流水线分发：
// 帧 N+1 的分发可以在帧 N 的分发未完成时开始；SerialDispatch
// 配置改为逐帧等待。这是显式策略而非偶然缺省。
package session
