// Package types 定义 sessnet 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 sessnet 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go      - SessionID, ProtocolID
//   - frame.go    - Frame 帧类型与默认线格式常量
//   - enums.go    - SessionState, Direction, BackpressurePolicy
//   - errors.go   - 公共错误定义
package types
