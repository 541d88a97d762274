package sockets

/**
  *  @author tryao
  *  @date 2022/09/07 10:15
**/

import (
	"sync"

	"github.com/wushian/fireasy2/base/log"
	"github.com/wushian/fireasy2/base/structs/set"
	"github.com/wushian/fireasy2/base/structs/syncmap"
)

// ClientManager 管理在线连接和分组，goroutine safe
// 显式创建再通过Option注入，不提供包级全局实例
type ClientManager struct {
	clients syncmap.Map[string, *Session]

	mu     sync.RWMutex
	groups map[string]*set.Set[string]
}

func NewClientManager() *ClientManager {
	return &ClientManager{
		groups: make(map[string]*set.Set[string]),
	}
}

// Add 注册连接，同ID重复注册时后来的生效
func (m *ClientManager) Add(s *Session) {
	if _, ok := m.clients.Load(s.ConnectionID()); ok {
		log.Warn("session %s is already registered, replaced", s.ConnectionID())
	}
	m.clients.Store(s.ConnectionID(), s)
}

// Remove 移除连接，同时清掉所有分组里的成员关系
func (m *ClientManager) Remove(id string) {
	m.clients.Delete(id)
	m.mu.Lock()
	for name, g := range m.groups {
		g.RemoveItem(id)
		if g.Size() == 0 {
			delete(m.groups, name)
		}
	}
	m.mu.Unlock()
}

func (m *ClientManager) Client(id string) (*Session, bool) {
	return m.clients.Load(id)
}

func (m *ClientManager) Count() int {
	return m.clients.Size()
}

// Range 遍历所有连接，f返回false时停止
func (m *ClientManager) Range(f func(s *Session) bool) {
	m.clients.Range(func(_ string, s *Session) bool {
		return f(s)
	})
}

// AddToGroup 把连接加进分组，连接不存在时忽略
func (m *ClientManager) AddToGroup(id, group string) {
	if _, ok := m.clients.Load(id); !ok {
		log.Warn("session %s not found, can't join group %s", id, group)
		return
	}
	m.mu.Lock()
	g, ok := m.groups[group]
	if !ok {
		g = set.NewSet[string]()
		m.groups[group] = g
	}
	g.AddItem(id)
	m.mu.Unlock()
}

func (m *ClientManager) RemoveFromGroup(id, group string) {
	m.mu.Lock()
	if g, ok := m.groups[group]; ok {
		g.RemoveItem(id)
		if g.Size() == 0 {
			delete(m.groups, group)
		}
	}
	m.mu.Unlock()
}

// InGroup 连接是否在分组里
func (m *ClientManager) InGroup(id, group string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[group]
	return ok && g.Contains(id)
}

// Group 分组内所有在线连接的快照
func (m *ClientManager) Group(group string) []*Session {
	m.mu.RLock()
	var ids []string
	if g, ok := m.groups[group]; ok {
		ids = g.ToArray()
	}
	m.mu.RUnlock()

	r := make([]*Session, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.clients.Load(id); ok {
			r = append(r, s)
		}
	}
	return r
}

// SendTo 给指定连接推送一条请求消息
func (m *ClientManager) SendTo(id, method string, args ...any) error {
	s, ok := m.clients.Load(id)
	if !ok {
		return ErrClientNotFound
	}
	return s.Send(method, args...)
}

// SendToGroup 给分组内所有连接推送，尽力而为
// 单个连接的失败走该连接的invoke error通知，不中断其余的发送
func (m *ClientManager) SendToGroup(group, method string, args ...any) {
	for _, s := range m.Group(group) {
		_ = s.Send(method, args...)
	}
}

// Broadcast 给所有在线连接推送
func (m *ClientManager) Broadcast(method string, args ...any) {
	m.Range(func(s *Session) bool {
		_ = s.Send(method, args...)
		return true
	})
}
