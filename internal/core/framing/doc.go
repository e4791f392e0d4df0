// Package framing 提供内建的分帧提取器与序列化器
//
// 默认线格式: [4 字节小端总长度][2 字节小端协议 ID][消息体]，
// 总长度包含长度前缀自身。消息体编码可插拔：
//
//   - RawSerializer   透传 []byte / string / encoding.BinaryMarshaler
//   - ProtoSerializer 以 protobuf 编码类型化消息体
//   - CompressingSerializer / Decompress 拦截器成对使用，
//     以 s2 压缩/解压消息体
package framing
