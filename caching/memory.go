package caching

import (
	"context"
	"time"

	"github.com/wushian/fireasy2/base/structs/syncmap"
)

type entry struct {
	value    []byte
	expireAt time.Time //零值表示永不过期
}

func (e entry) expired() bool {
	return !e.expireAt.IsZero() && time.Now().After(e.expireAt)
}

// MemoryCache 进程内缓存，读到过期数据时惰性删除
// 没有后台清理协程，适合做本地兜底或者测试
type MemoryCache struct {
	data syncmap.Map[string, entry]
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Contains(_ context.Context, key string) (bool, error) {
	e, ok := c.data.Load(key)
	if !ok {
		return false, nil
	}
	if e.expired() {
		c.data.Delete(key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.data.Load(key)
	if !ok {
		return nil, ErrNotFound
	}
	if e.expired() {
		c.data.Delete(key)
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, expire time.Duration) error {
	e := entry{value: value}
	if expire > 0 {
		e.expireAt = time.Now().Add(expire)
	}
	c.data.Store(key, e)
	return nil
}

func (c *MemoryCache) Remove(_ context.Context, key string) error {
	c.data.Delete(key)
	return nil
}
