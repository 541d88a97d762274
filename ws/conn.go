package ws

/**
  *  @author tryao
  *  @date 2022/09/05 11:33
**/
import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wushian/fireasy2/base/structs/chanx"
	"github.com/wushian/fireasy2/network"
)

const (
	initBufferSize = 2048
	closeWait      = 5 * time.Second
)

var ErrConnClosed = errors.New("connection closed")

type wsFrame struct {
	msgType int
	data    []byte
}

type Conn struct {
	sync.Mutex
	conn           *websocket.Conn
	writeChan      *chanx.UnboundedChan[*wsFrame]
	maxMsgLen      int64
	closeFlag      bool
	remoteOriginIP net.Addr
	userData       any

	// 当前还没读完的消息，goroutine not safe
	reader     io.Reader
	readerType int
}

func (wsConn *Conn) UserData() any {
	return wsConn.userData
}

func (wsConn *Conn) SetUserData(data any) {
	wsConn.userData = data
}

func newWSConn(conn *websocket.Conn, maxMsgLen int64) *Conn {
	wsConn := new(Conn)
	wsConn.conn = conn
	wsConn.writeChan = chanx.NewUnboundedChan[*wsFrame](initBufferSize)
	wsConn.maxMsgLen = maxMsgLen
	if maxMsgLen > 0 {
		conn.SetReadLimit(maxMsgLen)
	}
	// 关闭帧的回显由上层负责，覆盖gorilla的默认行为
	conn.SetCloseHandler(func(code int, text string) error {
		return nil
	})
	go func() {
		for f := range wsConn.writeChan.Out {
			if f == nil {
				break
			}
			err := conn.WriteMessage(f.msgType, f.data)
			if err != nil {
				break
			}
		}

		_ = conn.Close()
		wsConn.Lock()
		wsConn.closeFlag = true
		wsConn.Unlock()
	}()

	return wsConn
}

func (wsConn *Conn) doDestroy() {
	if tcpConn, ok := wsConn.conn.UnderlyingConn().(*net.TCPConn); ok {
		_ = tcpConn.SetLinger(0)
	}
	_ = wsConn.conn.Close()

	if !wsConn.closeFlag {
		wsConn.writeChan.Close()
		wsConn.closeFlag = true
	}
}

func (wsConn *Conn) Destroy() {
	wsConn.Lock()
	defer wsConn.Unlock()

	wsConn.doDestroy()
}

func (wsConn *Conn) Close() {
	wsConn.Lock()
	defer wsConn.Unlock()
	if wsConn.closeFlag {
		return
	}

	wsConn.doWrite(nil)
	wsConn.closeFlag = true
}

func (wsConn *Conn) doWrite(f *wsFrame) {
	wsConn.writeChan.In <- f
}

func (wsConn *Conn) LocalAddr() net.Addr {
	return wsConn.conn.LocalAddr()
}

func (wsConn *Conn) RemoteAddr() net.Addr {
	if wsConn.remoteOriginIP != nil {
		return wsConn.remoteOriginIP
	}
	return wsConn.conn.RemoteAddr()
}

func (wsConn *Conn) SetReadDeadline(t time.Time) error {
	return wsConn.conn.SetReadDeadline(t)
}

func toFrameType(messageType int) network.FrameType {
	if messageType == websocket.TextMessage {
		return network.TextFrame
	}
	return network.BinaryFrame
}

func toMessageType(t network.FrameType) int {
	if t == network.TextFrame {
		return websocket.TextMessage
	}
	return websocket.BinaryMessage
}

// ReadFrame 读一帧，最多len(buf)字节；对端发关闭帧时返回CloseFrame而不是error
// Frame.Data复用buf，只在下一次ReadFrame之前有效；goroutine not safe
func (wsConn *Conn) ReadFrame(buf []byte) (network.Frame, error) {
	var frame network.Frame
	if wsConn.reader == nil {
		t, r, err := wsConn.conn.NextReader()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				frame.Type = network.CloseFrame
				frame.Final = true
				frame.CloseCode = ce.Code
				frame.CloseText = ce.Text
				return frame, nil
			}
			return frame, err
		}
		wsConn.reader = r
		wsConn.readerType = t
	}
	frame.Type = toFrameType(wsConn.readerType)
	n, err := io.ReadFull(wsConn.reader, buf)
	switch {
	case err == nil:
		// buf读满了，消息是否结束要等下一次读
		frame.Data = buf[:n]
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		frame.Data = buf[:n]
		frame.Final = true
		wsConn.reader = nil
	default:
		wsConn.reader = nil
		//消息读到一半对端也可能发关闭帧，同样转成CloseFrame
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			frame.Type = network.CloseFrame
			frame.Data = nil
			frame.Final = true
			frame.CloseCode = ce.Code
			frame.CloseText = ce.Text
			return frame, nil
		}
		return frame, err
	}
	return frame, nil
}

// WriteMessage 写一条完整消息，经过写队列串行化，goroutine safe
func (wsConn *Conn) WriteMessage(t network.FrameType, data []byte) error {
	wsConn.Lock()
	defer wsConn.Unlock()
	if wsConn.closeFlag {
		return ErrConnClosed
	}

	if wsConn.maxMsgLen > 0 && int64(len(data)) > wsConn.maxMsgLen {
		return errors.New("message too long")
	}

	wsConn.doWrite(&wsFrame{msgType: toMessageType(t), data: data})
	return nil
}

// WriteClose 发送关闭帧，gorilla保证WriteControl可以和其他写并发
func (wsConn *Conn) WriteClose(code int, text string) error {
	msg := websocket.FormatCloseMessage(code, text)
	return wsConn.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
}
