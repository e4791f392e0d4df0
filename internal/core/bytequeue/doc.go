// Package bytequeue 提供可增长、段复用的字节队列
//
// 队列是会话收发路径的核心存储：接收循环在尾部 Append，
// 分帧提取器用 Peek/TrySlice 窥视，消费通过显式 Advance 提交。
// 窥视返回的切片是底层存储的别名（零拷贝），仅在下一次
// 改变缓冲的调用之前有效。
//
// 两个变体：
//   - Queue           仅在扩容时搬移剩余字节
//   - CompactingQueue 头部游标越过配置阈值后把剩余窗口搬回偏移 0，
//     在碎片化消费下保持摊还内存有界
package bytequeue
