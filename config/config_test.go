package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfigValid 测试默认配置通过验证
func TestDefaultConfigValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	t.Log("✅ 默认配置有效")
}

// TestFromJSON 测试 JSON 解析与默认值回填
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"network": {
			"listen_addrs": ["127.0.0.1:9000"],
			"idle_timeout": "2m",
			"idle_sweep_interval": "30s"
		},
		"session": {
			"backpressure": "fail",
			"serial_dispatch": true,
			"drain_timeout": "1s"
		},
		"compression": {
			"enabled": true,
			"min_size": 1024
		}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"127.0.0.1:9000"}, cfg.Network.ListenAddrs)
	assert.Equal(t, 2*time.Minute, cfg.Network.IdleTimeout.Duration())
	assert.Equal(t, "fail", cfg.Session.Backpressure)
	assert.True(t, cfg.Session.SerialDispatch)
	assert.Equal(t, time.Second, cfg.Session.DrainTimeout.Duration())
	assert.True(t, cfg.Compression.Enabled)
	assert.Equal(t, 1024, cfg.Compression.MinSize)

	// 未出现的字段保持默认
	assert.Equal(t, 32*1024, cfg.Session.ReadBufferSize)

	t.Log("✅ JSON 解析与默认回填")
}

// TestDurationFormats 测试时长的两种 JSON 形式
func TestDurationFormats(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"network": {"dial_timeout": "1h30m"}}`))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.Network.DialTimeout.Duration())

	// 数字按纳秒解释
	cfg, err = FromJSON([]byte(`{"network": {"dial_timeout": 5000000000}}`))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Network.DialTimeout.Duration())

	_, err = FromJSON([]byte(`{"network": {"dial_timeout": "not-a-duration"}}`))
	assert.Error(t, err)

	t.Log("✅ 时长双格式")
}

// TestValidateRejects 测试非法配置被拒绝
func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad listen addr", func(c *Config) { c.Network.ListenAddrs = []string{"no-port"} }},
		{"negative dial timeout", func(c *Config) { c.Network.DialTimeout = -1 }},
		{"idle without sweep", func(c *Config) {
			c.Network.IdleTimeout = Duration(time.Minute)
			c.Network.IdleSweepInterval = 0
		}},
		{"zero read buffer", func(c *Config) { c.Session.ReadBufferSize = 0 }},
		{"threshold out of range", func(c *Config) { c.Session.CompactThreshold = 1.5 }},
		{"tiny max frame", func(c *Config) { c.Session.MaxFrameSize = 3 }},
		{"unknown backpressure", func(c *Config) { c.Session.Backpressure = "drop" }},
		{"negative min size", func(c *Config) { c.Compression.MinSize = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Log("✅ 非法配置被拒绝")
}

// TestFileRoundTrip 测试配置文件读写
func TestFileRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Network.ListenAddrs = []string{"127.0.0.1:8800"}
	cfg.Session.Backpressure = "fail"

	path := filepath.Join(t.TempDir(), "sessnet.json")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Network.ListenAddrs, loaded.Network.ListenAddrs)
	assert.Equal(t, "fail", loaded.Session.Backpressure)

	_, err = FromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	t.Log("✅ 配置文件往返")
}
