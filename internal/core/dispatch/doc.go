// Package dispatch 提供协议分发表
//
// 注册阶段把每个协议 ID 绑定到一个预编译调用路径（直调闭包），
// Seal 之后表只读，稳态分发是一次索引查找加直接调用，
// 没有运行时类型检查。同一张表内重复注册协议 ID 在绑定期失败。
package dispatch
