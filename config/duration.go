// Package config 提供统一的配置管理
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 配置文件中的时长字段
//
// 网络与会话配置里的 dial_timeout、idle_timeout、drain_timeout
// 等字段统一用该类型承载：配置文件写 "30s"、"1h30m" 这类
// time.ParseDuration 字符串，也接受纳秒整数。序列化固定输出
// 字符串形式，保证往返后的配置文件仍可读。
type Duration time.Duration

// UnmarshalJSON 按字符串优先、纳秒整数兜底的顺序解析
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		duration, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, err)
		}
		*d = Duration(duration)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Duration(n)
		return nil
	}

	return fmt.Errorf("duration must be a string (e.g., \"30s\") or number (nanoseconds)")
}

// MarshalJSON 输出 time.Duration 的字符串形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回底层 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 返回字符串表示
func (d Duration) String() string {
	return time.Duration(d).String()
}
