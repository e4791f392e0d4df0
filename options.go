package sessnet

import (
	"fmt"

	"github.com/dep2p/go-sessnet/config"
	"github.com/dep2p/go-sessnet/pkg/interfaces"
	"github.com/dep2p/go-sessnet/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// route 单条协议注册
type route struct {
	id      types.ProtocolID
	handler interfaces.HandlerFunc
}

// options 内部选项结构
type options struct {
	// 配置来源
	config     *config.Config
	configFile string

	// 监听地址（显式设置后覆盖配置文件）
	listenAddrs    []string
	listenAddrsSet bool

	// 协议注册
	routes   []route
	handlers []interfaces.ProtocolCarrier

	// 拦截器
	perProto map[types.ProtocolID][]interfaces.Interceptor
	global   []interfaces.Interceptor

	// 收发路径定制
	extractor  interfaces.SessionPacketExtractor
	serializer interfaces.Serializer

	// 背压策略覆盖（"block"/"fail"）
	backpressure string

	// 观察者
	notifiers    []interfaces.SessionNotifier
	faultHandler interfaces.FaultHandler

	// 日志
	logFile string
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		perProto: make(map[types.ProtocolID][]interfaces.Interceptor),
	}
}

// WithConfig 使用给定配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configFile = path
		return nil
	}
}

// WithListenAddrs 设置监听地址
//
// 覆盖配置中的地址列表。不带参数调用表示不监听，
// 适用于纯拨号方的引擎。
func WithListenAddrs(addrs ...string) Option {
	return func(o *options) error {
		o.listenAddrs = addrs
		o.listenAddrsSet = true
		return nil
	}
}

// WithRoute 注册单条协议处理器
func WithRoute(id types.ProtocolID, h interfaces.HandlerFunc) Option {
	return func(o *options) error {
		if h == nil {
			return fmt.Errorf("handler for protocol %d cannot be nil", id)
		}
		o.routes = append(o.routes, route{id: id, handler: h})
		return nil
	}
}

// WithHandler 绑定结构化处理器对象
//
// 对象通过 Protocols() 声明协议号到方法名的映射，
// 方法按规范签名自动入表。
func WithHandler(h interfaces.ProtocolCarrier) Option {
	return func(o *options) error {
		if h == nil {
			return fmt.Errorf("handler object cannot be nil")
		}
		o.handlers = append(o.handlers, h)
		return nil
	}
}

// WithInterceptors 为指定协议挂接拦截器
func WithInterceptors(id types.ProtocolID, ics ...interfaces.Interceptor) Option {
	return func(o *options) error {
		o.perProto[id] = append(o.perProto[id], ics...)
		return nil
	}
}

// WithGlobalInterceptors 挂接全局拦截器
//
// 全局拦截器包在所有协议链的最外层。
func WithGlobalInterceptors(ics ...interfaces.Interceptor) Option {
	return func(o *options) error {
		o.global = append(o.global, ics...)
		return nil
	}
}

// WithExtractor 替换分帧提取器
func WithExtractor(e interfaces.SessionPacketExtractor) Option {
	return func(o *options) error {
		o.extractor = e
		return nil
	}
}

// WithSerializer 替换出站序列化器
func WithSerializer(s interfaces.Serializer) Option {
	return func(o *options) error {
		o.serializer = s
		return nil
	}
}

// WithBackpressure 设置发送缓冲高水位策略
//
// 覆盖配置中的策略："block" 阻塞等待排空，"fail" 快速失败。
func WithBackpressure(policy string) Option {
	return func(o *options) error {
		if _, ok := types.ParseBackpressurePolicy(policy); !ok {
			return fmt.Errorf("unknown backpressure policy %q", policy)
		}
		o.backpressure = policy
		return nil
	}
}

// WithNotifier 注册会话生命周期观察者
func WithNotifier(n interfaces.SessionNotifier) Option {
	return func(o *options) error {
		if n != nil {
			o.notifiers = append(o.notifiers, n)
		}
		return nil
	}
}

// WithFaultHandler 注册分发故障回调
func WithFaultHandler(f interfaces.FaultHandler) Option {
	return func(o *options) error {
		o.faultHandler = f
		return nil
	}
}

// WithLogFile 把日志写入文件
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.logFile = path
		return nil
	}
}

// resolveConfig 按优先级归一配置：WithConfig > WithConfigFile > 默认
func (o *options) resolveConfig() (*config.Config, error) {
	cfg := o.config
	if cfg == nil && o.configFile != "" {
		loaded, err := config.FromFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	if o.listenAddrsSet {
		cfg.Network.ListenAddrs = o.listenAddrs
	}
	if o.backpressure != "" {
		cfg.Session.Backpressure = o.backpressure
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
