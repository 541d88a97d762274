package subscribe

/**
  *  @author tryao
  *  @date 2022/09/08 10:05
**/

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/wushian/fireasy2/base/log"
)

// ErrClosed 管理器已经关闭
var ErrClosed = errors.New("subscribe: manager closed")

// SubscribeManager 发布订阅的窄接口，引擎本身不做消息中转
// 实例由使用方创建并注入，没有包级默认实例
type SubscribeManager interface {
	Publish(ctx context.Context, subject string, data []byte) error
	// Subscribe 返回取消函数，handler在独立goroutine里执行
	Subscribe(subject string, fn func(data []byte)) (cancel func(), err error)
	Close() error
}

// Topic 给主题绑定消息类型，收发两端用同一个声明，避免裸字节满天飞
// 编解码固定为json
type Topic[T any] struct {
	Name string
}

func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{Name: name}
}

func (t Topic[T]) Publish(ctx context.Context, m SubscribeManager, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Publish(ctx, t.Name, data)
}

func (t Topic[T]) Subscribe(m SubscribeManager, fn func(v T)) (func(), error) {
	return m.Subscribe(t.Name, func(data []byte) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			log.Warn("topic %s: drop bad payload: %v", t.Name, err)
			return
		}
		fn(v)
	})
}

// handler里的panic不能打断投递循环
func safeHandle(subject string, fn func([]byte), data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.PanicStack("subscribe "+subject, r)
		}
	}()
	fn(data)
}
