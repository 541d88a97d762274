package sockets

/**
  *  @author tryao
  *  @date 2022/09/06 16:40
**/

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/wushian/fireasy2/base/log"
	"github.com/wushian/fireasy2/network"
)

const (
	stateOpen int32 = iota
	stateClosing
	stateClosed

	//本端主动关闭后等待对端回显的时间
	closeGrace = 5 * time.Second
)

// Session 单个连接的处理器，实现network.Session
// Run在宿主（ws.Server/ws.Client）分配的goroutine里阻塞执行，
// 收消息、路由、写应答都由它驱动；写经过连接的写队列串行化，
// 所以Send可以从任何goroutine调用
type Session struct {
	id       string
	conn     network.Conn
	opt      *Option
	codec    *Codec
	monitor  *heartbeatMonitor
	limiter  *rate.Limiter
	fields   log.Fields
	userData any

	state     *atomic.Int32
	started   *atomic.Bool
	disposed  *atomic.Bool
	closeSent *atomic.Bool
	//通信循环退出前记录的对端关闭帧，只在Run的goroutine里写
	peerClose *network.Frame

	pendingMu sync.Mutex
	pending   map[string][]chan any
}

func NewSession(conn network.Conn, opt *Option) *Session {
	opt = opt.normalize()
	s := &Session{
		id:        uuid.NewString(),
		conn:      conn,
		opt:       opt,
		codec:     &Codec{Formatter: opt.Formatter, Encoding: opt.Encoding},
		state:     atomic.NewInt32(stateOpen),
		started:   atomic.NewBool(false),
		disposed:  atomic.NewBool(false),
		closeSent: atomic.NewBool(false),
		pending:   make(map[string][]chan any),
	}
	s.fields = log.Fields{"id": s.id[:8]}.WithPrefix("session")
	s.monitor = newHeartbeatMonitor(opt.HeartbeatInterval, opt.HeartbeatTryTimes, s.onHeartbeatExpire)
	if opt.MessageRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opt.MessageRate), opt.MessageBurst)
	}
	return s
}

func (s *Session) ConnectionID() string {
	return s.id
}

// Alive 连接是否还在服务
func (s *Session) Alive() bool {
	return s.state.Load() == stateOpen
}

func (s *Session) UserData() any {
	return s.userData
}

func (s *Session) SetUserData(data any) {
	s.userData = data
}

func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Run 注册自己、起心跳、跑通信循环，直到连接结束
// 无论什么原因退出，注销流程都恰好执行一次；不会向外panic
func (s *Session) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.PanicStack("session run", r)
		}
		s.teardown(s.peerClose)
	}()

	if s.opt.Manager != nil {
		s.opt.Manager.Add(s)
	}
	if s.disposed.Load() {
		//和Destroy并发时注册可能晚于注销，这里补偿一次
		if s.opt.Manager != nil {
			s.opt.Manager.Remove(s.id)
		}
		return
	}
	s.started.Store(true)
	s.opt.Metrics.incConnections()
	s.monitor.Start()
	s.fireConnected()
	s.receiveLoop()
}

// OnClose 宿主在Run返回后调用，幂等
func (s *Session) OnClose() {
	s.teardown(s.peerClose)
}

func (s *Session) receiveLoop() {
	buf := make([]byte, s.opt.ReceiveBufferSize)
	text := NewPendingBuffer()
	binary := NewPendingBuffer()
	for {
		frame, err := s.conn.ReadFrame(buf)
		if err != nil {
			s.fields.Debug("read frame error: %v", err)
			return
		}
		s.monitor.Touch()
		switch frame.Type {
		case network.CloseFrame:
			f := frame
			s.peerClose = &f
			s.fields.Debug("peer close: %d %s", f.CloseCode, f.CloseText)
			return
		case network.TextFrame:
			text.Append(frame.Data, frame.Final)
			if text.Complete() {
				if s.allowMessage() {
					s.handleText(text.Bytes())
				}
				text.Reset()
			}
		case network.BinaryFrame:
			binary.Append(frame.Data, frame.Final)
			if binary.Complete() {
				if s.allowMessage() {
					s.handleBinary(binary.Bytes())
				}
				binary.Reset()
			}
		}
	}
}

func (s *Session) allowMessage() bool {
	if s.limiter == nil || s.limiter.Allow() {
		return true
	}
	s.opt.Metrics.incRateLimited()
	s.fields.Warn("message rate limited, dropped")
	return false
}

// 一条完整的文本消息：先通知，再解析信封并路由
// 解析失败只通知resolve error，连接继续服务
func (s *Session) handleText(data []byte) {
	s.opt.Metrics.incMessagesIn()
	text, err := s.codec.DecodeText(data)
	if err != nil {
		s.fireResolveError(data, err)
		return
	}
	s.fireTextReceived(text)
	msg, err := s.codec.Unmarshal(text)
	if err != nil {
		s.fireResolveError(data, err)
		return
	}
	if msg.IsRequest() {
		s.dispatch(msg)
	} else {
		s.resolveResponse(msg)
	}
}

// 二进制消息不走分派，只通知
func (s *Session) handleBinary(data []byte) {
	s.opt.Metrics.incMessagesIn()
	s.fireBinaryReceived(data)
}

// dispatch 路由一条请求
// 有返回值的方法：成功发应答，失败发零值应答，调用端不会无限等待
// 无返回值的方法成功与否都不发任何帧
func (s *Session) dispatch(msg *InvokeMessage) {
	name := msg.Method
	var m Method
	ok := false
	if s.opt.Table != nil {
		m, ok = s.opt.Table.Lookup(name)
	}
	if !ok {
		s.fireInvokeError(name, fmt.Errorf("%w: %s", ErrMethodNotFound, name))
		return
	}
	if len(msg.Arguments) != m.arity {
		s.invokeFailed(name, m, &ArgumentMismatchError{
			Method:   name,
			Expected: m.arity,
			Actual:   len(msg.Arguments),
			Position: -1,
		})
		return
	}
	result, err := s.safeInvoke(name, m, msg.Arguments)
	if err != nil {
		var am *ArgumentMismatchError
		if errors.As(err, &am) && am.Method == "" {
			am.Method = name
			am.Expected = m.arity
			am.Actual = len(msg.Arguments)
		}
		s.invokeFailed(name, m, err)
		return
	}
	if m.hasRet {
		if werr := s.write(NewResponse(name, result)); werr != nil {
			s.fireInvokeError(name, werr)
		}
	}
}

func (s *Session) safeInvoke(name string, m Method, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.PanicStack("invoke "+name, r)
			err = fmt.Errorf("method %s panic: %v", name, r)
		}
	}()
	return m.invoke(s, args)
}

func (s *Session) invokeFailed(name string, m Method, err error) {
	s.fireInvokeError(name, err)
	if m.hasRet {
		if werr := s.write(NewResponse(name, m.zeroRet)); werr != nil {
			s.fireInvokeError(name, werr)
		}
	}
}

// 入站应答，交给等待中的Call；没人等就丢掉
func (s *Session) resolveResponse(msg *InvokeMessage) {
	key := strings.ToLower(msg.Method)
	var ch chan any
	s.pendingMu.Lock()
	if q := s.pending[key]; len(q) > 0 {
		ch = q[0]
		if len(q) == 1 {
			delete(s.pending, key)
		} else {
			s.pending[key] = q[1:]
		}
	}
	s.pendingMu.Unlock()
	if ch == nil {
		s.fields.Debug("no waiter for response %s, dropped", msg.Method)
		return
	}
	var v any
	if len(msg.Arguments) > 0 {
		v = msg.Arguments[0]
	}
	ch <- v
}

// Send 推送一条请求消息，编码后作为单个文本帧写出
// 失败会走invoke error通知，同时返回错误
func (s *Session) Send(method string, args ...any) error {
	err := s.write(NewRequest(method, args...))
	if err != nil {
		s.fireInvokeError(method, err)
	}
	return err
}

// SendBinary 写一个完整的二进制帧
func (s *Session) SendBinary(data []byte) error {
	if !s.Alive() {
		return ErrSessionClosed
	}
	if err := s.conn.WriteMessage(network.BinaryFrame, data); err != nil {
		return err
	}
	s.opt.Metrics.incMessagesOut()
	return nil
}

// Call 发送请求并等待同名方法的应答，按FIFO配对
// 超时或者会话关闭时返回错误
func (s *Session) Call(ctx context.Context, method string, args ...any) (any, error) {
	key := strings.ToLower(method)
	ch := make(chan any, 1)
	s.pendingMu.Lock()
	if s.pending == nil {
		s.pendingMu.Unlock()
		return nil, ErrSessionClosed
	}
	s.pending[key] = append(s.pending[key], ch)
	s.pendingMu.Unlock()

	if err := s.Send(method, args...); err != nil {
		s.removePending(key, ch)
		return nil, err
	}
	select {
	case v, ok := <-ch:
		if !ok {
			return nil, ErrSessionClosed
		}
		return v, nil
	case <-ctx.Done():
		s.removePending(key, ch)
		return nil, ctx.Err()
	}
}

func (s *Session) removePending(key string, ch chan any) {
	s.pendingMu.Lock()
	q := s.pending[key]
	for i, c := range q {
		if c == ch {
			s.pending[key] = append(q[:i], q[i+1:]...)
			break
		}
	}
	if len(s.pending[key]) == 0 {
		delete(s.pending, key)
	}
	s.pendingMu.Unlock()
}

func (s *Session) write(msg *InvokeMessage) error {
	if !s.Alive() {
		return ErrSessionClosed
	}
	data, err := s.codec.Encode(msg)
	if err != nil {
		return err
	}
	if err = s.conn.WriteMessage(network.TextFrame, data); err != nil {
		return err
	}
	s.opt.Metrics.incMessagesOut()
	return nil
}

// Close 主动优雅关闭：发关闭帧，等对端回显把通信循环带出来
// 对端一直不响应时靠读超时兜底
func (s *Session) Close() {
	if s.state.CompareAndSwap(stateOpen, stateClosing) {
		if s.closeSent.CompareAndSwap(false, true) {
			if err := s.conn.WriteClose(network.CloseNormalClosure, ""); err != nil {
				s.conn.Destroy()
				return
			}
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(closeGrace))
	}
}

// Destroy 立刻断开，不走关闭握手
func (s *Session) Destroy() {
	s.conn.Destroy()
	s.teardown(nil)
}

// 心跳超时：连接看起来还开着就走优雅关闭，否则直接注销
func (s *Session) onHeartbeatExpire() {
	s.fields.Info("heartbeat timeout after %v x %d", s.opt.HeartbeatInterval, s.opt.HeartbeatTryTimes)
	if s.state.CompareAndSwap(stateOpen, stateClosing) {
		s.closeSent.Store(true)
		if err := s.conn.WriteClose(network.CloseNormalClosure, "heartbeat timeout"); err != nil {
			s.conn.Destroy()
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opt.HeartbeatInterval))
	} else {
		s.teardown(nil)
	}
}

// teardown 注销流程，并发触发时恰好执行一次：
// 停心跳、回显/补发关闭帧、关连接、出注册表、断开通知
func (s *Session) teardown(peer *network.Frame) {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.state.Store(stateClosing)
	s.monitor.Stop()

	if s.closeSent.CompareAndSwap(false, true) {
		if peer != nil {
			//对端主动关闭，按同样的状态码回显
			_ = s.conn.WriteClose(peer.CloseCode, peer.CloseText)
		} else {
			_ = s.conn.WriteClose(network.CloseNormalClosure, "")
		}
	}
	s.conn.Close()

	s.pendingMu.Lock()
	for _, q := range s.pending {
		for _, ch := range q {
			close(ch)
		}
	}
	s.pending = nil
	s.pendingMu.Unlock()

	if s.opt.Manager != nil {
		s.opt.Manager.Remove(s.id)
	}
	if s.started.Load() {
		s.opt.Metrics.decConnections()
	}
	s.fireDisconnected()
	s.state.Store(stateClosed)
}

func (s *Session) safeCallback(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.PanicStack("session callback", r)
		}
	}()
	fn()
}

func (s *Session) fireConnected() {
	s.fields.Debug("connected from %v", s.RemoteAddr())
	if cb := s.opt.Events.OnConnected; cb != nil {
		s.safeCallback(func() { cb(s) })
	}
}

func (s *Session) fireDisconnected() {
	s.fields.Debug("disconnected")
	if cb := s.opt.Events.OnDisconnected; cb != nil {
		s.safeCallback(func() { cb(s) })
	}
}

func (s *Session) fireTextReceived(text string) {
	if cb := s.opt.Events.OnTextReceived; cb != nil {
		s.safeCallback(func() { cb(s, text) })
	}
}

func (s *Session) fireBinaryReceived(data []byte) {
	if cb := s.opt.Events.OnBinaryReceived; cb != nil {
		s.safeCallback(func() { cb(s, data) })
	}
}

func (s *Session) fireResolveError(raw []byte, err error) {
	s.opt.Metrics.incResolveErrors()
	s.fields.Warn("resolve message error: %v", err)
	if cb := s.opt.Events.OnResolveError; cb != nil {
		s.safeCallback(func() { cb(s, raw, err) })
	}
}

func (s *Session) fireInvokeError(method string, err error) {
	s.opt.Metrics.incInvokeErrors()
	s.fields.Warn("invoke %s error: %v", method, err)
	if cb := s.opt.Events.OnInvokeError; cb != nil {
		s.safeCallback(func() { cb(s, method, err) })
	}
}
