package sockets

import "bytes"

// PendingBuffer 按到达顺序累积一条消息的分帧数据
// 是否完整只看传输层的结束标志，和内容无关
// 每个连接的读是串行的，不加锁
type PendingBuffer struct {
	buf      bytes.Buffer
	complete bool
}

func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{}
}

// Append 追加一帧数据，final表示消息结束
func (b *PendingBuffer) Append(chunk []byte, final bool) {
	b.buf.Write(chunk)
	if final {
		b.complete = true
	}
}

func (b *PendingBuffer) Complete() bool {
	return b.complete
}

func (b *PendingBuffer) Len() int {
	return b.buf.Len()
}

// Bytes 取出完整消息，内容就是各帧的原样拼接
// 返回值在Reset之后失效
func (b *PendingBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *PendingBuffer) Reset() {
	b.buf.Reset()
	b.complete = false
}
