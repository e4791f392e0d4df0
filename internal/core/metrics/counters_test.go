package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCounters_Basic 测试基本计数
func TestCounters_Basic(t *testing.T) {
	c := NewCounters()

	c.SessionAccepted()
	c.SessionDialed()
	c.LogRecv(100, 2)
	c.LogSent(50, 1)
	c.LogDispatchFault()
	c.LogProtocolError()
	c.LogBackpressure()
	c.SessionClosed()

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.AcceptedTotal)
	assert.Equal(t, int64(1), snap.DialedTotal)
	assert.Equal(t, int64(1), snap.OpenSessions)
	assert.Equal(t, int64(100), snap.BytesIn)
	assert.Equal(t, int64(2), snap.FramesIn)
	assert.Equal(t, int64(50), snap.BytesOut)
	assert.Equal(t, int64(1), snap.FramesOut)
	assert.Equal(t, int64(1), snap.DispatchFaults)
	assert.Equal(t, int64(1), snap.ProtocolErrors)
	assert.Equal(t, int64(1), snap.BackpressureHits)

	t.Log("✅ 基本计数正确")
}

// TestCounters_Concurrent 测试并发更新
func TestCounters_Concurrent(t *testing.T) {
	c := NewCounters()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.LogRecv(1, 1)
				c.LogSent(1, 1)
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(16000), snap.BytesIn)
	assert.Equal(t, int64(16000), snap.FramesOut)

	t.Log("✅ 并发更新无丢失")
}
