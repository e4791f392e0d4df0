// Package sessnet 提供面向帧的 TCP 会话引擎
//
// 引擎把原始 TCP 连接升格为会话：入站字节经零拷贝接收队列
// 切出长度前缀帧，按协议号路由到注册的处理器，处理器返回值
// 自动回写对端。发送路径带高水位背压与优雅排水。
//
// 使用示例：
//
//	engine, err := sessnet.New(
//	    sessnet.WithListenAddrs("0.0.0.0:7000"),
//	    sessnet.WithRoute(1, echoHandler),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
// 结构化的处理器对象通过 WithHandler 批量绑定：实现
// Protocols() 元数据的类型，其同名方法按协议号自动入表。
package sessnet
