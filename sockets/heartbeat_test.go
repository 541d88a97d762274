package sockets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestHeartbeatMonitor_Expire(t *testing.T) {
	fired := make(chan struct{})
	m := newHeartbeatMonitor(20*time.Millisecond, 2, func() { close(fired) })
	m.Start()
	defer m.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("monitor should fire after interval*tryTimes of silence")
	}
}

func TestHeartbeatMonitor_TouchKeepsAlive(t *testing.T) {
	fired := atomic.NewBool(false)
	m := newHeartbeatMonitor(25*time.Millisecond, 2, func() { fired.Store(true) })
	m.Start()
	//持续有消息就不超时
	for i := 0; i < 20; i++ {
		time.Sleep(5 * time.Millisecond)
		m.Touch()
	}
	m.Stop()
	assert.False(t, fired.Load())
}

func TestHeartbeatMonitor_Disabled(t *testing.T) {
	m := newHeartbeatMonitor(-1, 3, func() { t.Error("disabled monitor fired") })
	assert.False(t, m.Enabled())
	m.Start()
	m.Stop()

	m = newHeartbeatMonitor(time.Second, 0, nil)
	assert.False(t, m.Enabled())
}

func TestHeartbeatMonitor_StopIdempotent(t *testing.T) {
	m := newHeartbeatMonitor(10*time.Millisecond, 1, func() {})
	m.Start()
	m.Stop()
	m.Stop()
}
