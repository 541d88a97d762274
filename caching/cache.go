package caching

/**
  *  @author tryao
  *  @date 2022/09/08 09:12
**/

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound key不存在或者已经过期
var ErrNotFound = errors.New("cache: key not found")

// CacheManager 缓存的窄接口，引擎本身不做缓存
// 淘汰策略由具体实现决定，这里只约定过期语义：
// expire为0表示永不过期
type CacheManager interface {
	Contains(ctx context.Context, key string) (bool, error)
	// Get key不存在时返回ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expire time.Duration) error
	Remove(ctx context.Context, key string) error
}
