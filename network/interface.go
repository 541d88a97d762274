package network

import (
	"net"
	"time"
)

// FrameType 帧类型
type FrameType int

const (
	TextFrame FrameType = iota + 1
	BinaryFrame
	CloseFrame
)

// 常用关闭状态码，与RFC6455一致
const (
	CloseNormalClosure  = 1000
	CloseGoingAway      = 1001
	CloseMessageTooBig  = 1009
	CloseInternalSvrErr = 1011
)

// Frame 传输层读到的一段数据
// Final是传输层标记的消息结束标志，和内容无关
type Frame struct {
	Type      FrameType
	Data      []byte
	Final     bool
	CloseCode int
	CloseText string
}

// Session 每个连接在独立的协程里处理消息
type Session interface {
	// Run 阻塞通信循环
	Run()
	// OnClose 关闭连接回调
	OnClose()
}

// Conn 对于网络连接的抽象，按帧读，按消息写
type Conn interface {
	// ReadFrame 读一帧，单帧长度不超过len(buf)；goroutine not safe
	ReadFrame(buf []byte) (Frame, error)
	// WriteMessage 写一条完整消息，goroutine safe
	WriteMessage(t FrameType, data []byte) error
	// WriteClose 发送关闭帧，可以和其他写操作并发
	WriteClose(code int, text string) error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	SetReadDeadline(t time.Time) error
	Close()
	Destroy()
}
