package chanx

/**
  *  @author tryao
  *  @date 2022/08/30 09:41
**/

import (
	"github.com/eapache/queue"
)

// UnboundedChan 无界channel，In端写入永远不会阻塞
// Out端关闭前会把缓冲数据全部吐出
type UnboundedChan[T any] struct {
	In     chan<- T
	Out    <-chan T
	buffer *queue.Queue
}

func NewUnboundedChan[T any](initCapacity int) *UnboundedChan[T] {
	in := make(chan T, initCapacity)
	out := make(chan T, initCapacity)
	c := &UnboundedChan[T]{
		In:     in,
		Out:    out,
		buffer: queue.New(),
	}
	go c.shuttle(in, out)
	return c
}

// Close 关闭写入端，缓冲消费完毕后Out自动关闭
// 关闭后继续写In会panic，调用方自己保证时序
func (c *UnboundedChan[T]) Close() {
	close(c.In)
}

func (c *UnboundedChan[T]) shuttle(in, out chan T) {
	defer close(out)
loop:
	for {
		val, ok := <-in
		if !ok {
			break loop
		}
		select {
		case out <- val:
			continue
		default:
		}
		// out已满，转入缓冲
		c.buffer.Add(val)
		for c.buffer.Length() > 0 {
			select {
			case val, ok := <-in:
				if !ok {
					break loop
				}
				c.buffer.Add(val)
			case out <- c.buffer.Peek().(T):
				c.buffer.Remove()
			}
		}
	}
	for c.buffer.Length() > 0 {
		out <- c.buffer.Peek().(T)
		c.buffer.Remove()
	}
}
