package subscribe

import (
	"context"
	"sync"
)

type memHandler struct {
	fn func([]byte)
}

// MemoryManager 进程内发布订阅，投递异步，不保证持久化
// 用于单机部署和测试
type MemoryManager struct {
	mu       sync.RWMutex
	closed   bool
	handlers map[string][]*memHandler
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{handlers: make(map[string][]*memHandler)}
}

func (m *MemoryManager) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	hs := append([]*memHandler(nil), m.handlers[subject]...)
	m.mu.RUnlock()

	//发布方不被订阅方阻塞
	go func() {
		for _, h := range hs {
			safeHandle(subject, h.fn, data)
		}
	}()
	return nil
}

func (m *MemoryManager) Subscribe(subject string, fn func(data []byte)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	h := &memHandler{fn: fn}
	m.handlers[subject] = append(m.handlers[subject], h)
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		hs := m.handlers[subject]
		for i, cur := range hs {
			if cur == h {
				m.handlers[subject] = append(hs[:i], hs[i+1:]...)
				break
			}
		}
		if len(m.handlers[subject]) == 0 {
			delete(m.handlers, subject)
		}
	}
	return cancel, nil
}

func (m *MemoryManager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.handlers = make(map[string][]*memHandler)
	m.mu.Unlock()
	return nil
}
