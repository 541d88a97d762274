package sockets

/**
  *  @author tryao
  *  @date 2022/09/06 14:08
**/

import (
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/encoding"
)

const (
	DefaultReceiveBufferSize = 4096
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHeartbeatTryTimes = 3
)

// Events 会话的事件回调，全部可选
// 回调在会话自己的goroutine里同步执行，里面的panic会被接住，
// 不会影响通信循环；入参的字节切片只在回调期间有效
type Events struct {
	OnConnected      func(s *Session)
	OnDisconnected   func(s *Session)
	OnTextReceived   func(s *Session, text string)
	OnBinaryReceived func(s *Session, data []byte)
	OnResolveError   func(s *Session, raw []byte, err error)
	OnInvokeError    func(s *Session, method string, err error)
}

// Option 会话的构建参数，零值直接可用
type Option struct {
	//单次读取的缓冲区大小，也是一帧的最大长度
	ReceiveBufferSize int
	//文本编码，nil表示utf8
	Encoding encoding.Encoding
	//信封序列化器，默认json
	Formatter MessageFormatter
	//心跳周期，0取默认值，负数表示关闭心跳
	HeartbeatInterval time.Duration
	//连续多少个周期无消息判定超时，0取默认值
	HeartbeatTryTimes int
	//每秒入站消息数限制，0表示不限制
	MessageRate float64
	//令牌桶突发容量，0时取MessageRate+1
	MessageBurst int

	//客户端注册表，可选
	Manager *ClientManager
	//方法注册表，可选；没有注册表时所有请求都按方法不存在处理
	Table *MethodTable
	//事件回调
	Events Events
	//指标，nil表示不采集
	Metrics *Metrics
}

// normalize 返回补全默认值的副本，后续修改原Option不影响会话
func (opt *Option) normalize() *Option {
	r := &Option{}
	if opt != nil {
		*r = *opt
	}
	if r.ReceiveBufferSize <= 0 {
		r.ReceiveBufferSize = DefaultReceiveBufferSize
	}
	if r.Formatter == nil {
		r.Formatter = JsonFormatter{}
	}
	if r.HeartbeatInterval == 0 {
		r.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if r.HeartbeatTryTimes == 0 {
		r.HeartbeatTryTimes = DefaultHeartbeatTryTimes
	}
	if r.MessageRate > 0 {
		r.MessageBurst = lo.Ternary(r.MessageBurst > 0, r.MessageBurst, int(r.MessageRate)+1)
	}
	return r
}
