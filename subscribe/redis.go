package subscribe

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

// RedisManager 基于redis channel的发布订阅
// 每个Subscribe占用一条独立的pubsub连接，client由外部注入
type RedisManager struct {
	client *redis.Client

	mu     sync.Mutex
	closed bool
	subs   map[*redis.PubSub]struct{}
}

func NewRedisManager(client *redis.Client) *RedisManager {
	return &RedisManager{
		client: client,
		subs:   make(map[*redis.PubSub]struct{}),
	}
}

func (m *RedisManager) Publish(ctx context.Context, subject string, data []byte) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return m.client.Publish(ctx, subject, data).Err()
}

func (m *RedisManager) Subscribe(subject string, fn func(data []byte)) (func(), error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	ps := m.client.Subscribe(context.Background(), subject)
	m.subs[ps] = struct{}{}
	m.mu.Unlock()

	//等订阅确认，失败时立刻报给调用方
	if _, err := ps.Receive(context.Background()); err != nil {
		m.forget(ps)
		_ = ps.Close()
		return nil, err
	}
	go func() {
		for msg := range ps.Channel() {
			safeHandle(subject, fn, []byte(msg.Payload))
		}
	}()
	cancel := func() {
		m.forget(ps)
		_ = ps.Close()
	}
	return cancel, nil
}

func (m *RedisManager) forget(ps *redis.PubSub) {
	m.mu.Lock()
	delete(m.subs, ps)
	m.mu.Unlock()
}

// Close 关闭所有订阅，注入的client由创建方自己关闭
func (m *RedisManager) Close() error {
	m.mu.Lock()
	m.closed = true
	subs := m.subs
	m.subs = make(map[*redis.PubSub]struct{})
	m.mu.Unlock()
	for ps := range subs {
		_ = ps.Close()
	}
	return nil
}
