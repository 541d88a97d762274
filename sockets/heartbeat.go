package sockets

import (
	"time"

	"go.uber.org/atomic"
)

// heartbeatMonitor 空闲检测
// 周期interval，连续tryTimes个周期没有任何入站消息就触发onExpire
// 任何入站消息都算活跃，没有专门的ping
type heartbeatMonitor struct {
	interval   time.Duration
	tryTimes   int
	lastActive *atomic.Int64 //unix nano
	stopped    *atomic.Bool
	done       chan struct{}
	onExpire   func()
}

func newHeartbeatMonitor(interval time.Duration, tryTimes int, onExpire func()) *heartbeatMonitor {
	return &heartbeatMonitor{
		interval:   interval,
		tryTimes:   tryTimes,
		lastActive: atomic.NewInt64(time.Now().UnixNano()),
		stopped:    atomic.NewBool(false),
		done:       make(chan struct{}),
		onExpire:   onExpire,
	}
}

// Enabled interval和tryTimes都大于0才开启
func (m *heartbeatMonitor) Enabled() bool {
	return m != nil && m.interval > 0 && m.tryTimes > 0
}

func (m *heartbeatMonitor) Start() {
	if !m.Enabled() {
		return
	}
	m.Touch()
	go m.loop()
}

// Touch 刷新活跃时间，读到任何帧都要调用
func (m *heartbeatMonitor) Touch() {
	m.lastActive.Store(time.Now().UnixNano())
}

func (m *heartbeatMonitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	deadline := m.interval.Nanoseconds() * int64(m.tryTimes)
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			if time.Now().UnixNano()-m.lastActive.Load() >= deadline {
				m.onExpire()
				return
			}
		}
	}
}

// Stop 幂等，任何goroutine里调用都安全，包括和超时触发并发
func (m *heartbeatMonitor) Stop() {
	if !m.Enabled() {
		return
	}
	if m.stopped.CompareAndSwap(false, true) {
		close(m.done)
	}
}
