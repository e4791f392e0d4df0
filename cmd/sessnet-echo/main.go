// Package main 提供 sessnet 回显服务入口
//
// 把协议 1 的帧体原样回写对端，用于联调与压测对端实现。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/go-sessnet"
	"github.com/dep2p/go-sessnet/config"
	"github.com/dep2p/go-sessnet/internal/core/pipeline"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/lib/log"
	"github.com/dep2p/go-sessnet/pkg/types"
)

var logger = log.Logger("sessnet/cmd")

var (
	addr        = flag.String("addr", "127.0.0.1:7000", "监听地址")
	configFile  = flag.String("config", "", "配置文件路径")
	logFile     = flag.String("log", "", "日志文件路径")
	accessLog   = flag.Bool("access-log", false, "打印每帧分发日志")
	statsEvery  = flag.Duration("stats", 30*time.Second, "指标打印周期（0 = 不打印）")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

// echoProtocol 回显协议号
const echoProtocol types.ProtocolID = 1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println("sessnet-echo", sessnet.Version)
		return nil
	}

	opts := []sessnet.Option{
		sessnet.WithListenAddrs(*addr),
		sessnet.WithRoute(echoProtocol, echoHandler),
	}
	if *configFile != "" {
		cfg, err := config.FromFile(*configFile)
		if err != nil {
			return err
		}
		// 命令行地址仍覆盖配置文件
		opts = append(opts, sessnet.WithConfig(cfg))
	}
	if *logFile != "" {
		opts = append(opts, sessnet.WithLogFile(*logFile))
	}
	if *accessLog {
		opts = append(opts, sessnet.WithGlobalInterceptors(pipeline.AccessLog()))
	}

	engine, err := sessnet.New(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Close()

	logger.Info("回显服务就绪", "addrs", engine.ListenAddrs())

	if *statsEvery > 0 {
		go printStats(ctx, engine, *statsEvery)
	}

	// 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("收到退出信号，正在关闭", "signal", sig)

	return engine.Close()
}

// echoHandler 把帧体原样回写
func echoHandler(_ context.Context, _ interfaces.Session, body []byte) (any, error) {
	return append([]byte(nil), body...), nil
}

// printStats 周期性打印指标快照
func printStats(ctx context.Context, engine *sessnet.Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := engine.Snapshot()
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			logger.Info("指标快照", "stats", string(data))
		}
	}
}
