// Package interfaces 定义 sessnet 面向调用方的公共契约
//
// 实现位于 internal/core 下，调用方只依赖本包与 pkg/types。
//
// # 文件组织
//
//   - session.go  - Session 会话契约、能力注册表键
//   - framing.go  - ReceiveBuffer、PacketExtractor、Serializer 契约
//   - dispatch.go - 处理器签名、分发上下文、拦截器契约
//   - notifier.go - 会话生命周期通知、故障回调
package interfaces
