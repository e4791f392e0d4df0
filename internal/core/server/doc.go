// Package server 提供会话宿主
//
// Server 聚合监听、拨号、会话注册表与空闲回收：
//   - Listen 在 TCP 地址上启动 Accept 循环，入站连接包装为会话
//   - Dial 发起出站连接，与入站会话共享同一条收发路径
//   - 注册表按会话 ID 索引全部存活会话，关闭时统一拆除
//   - 空闲回收器定期扫描，超过空闲时限的会话被主动关闭
//
// 会话生命周期事件通过 SessionNotifier 广播给观察者。
package server
