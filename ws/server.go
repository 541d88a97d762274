package ws

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wushian/fireasy2/base/log"
	"github.com/wushian/fireasy2/base/structs/set"
	"github.com/wushian/fireasy2/network"
)

/**
  *  @author tryao
  *  @date 2022/09/05 11:32
**/

// Server 是websocket服务端
type Server struct {
	Addr        string
	MaxMsgLen   int64
	HTTPTimeout time.Duration
	//证书路径
	CertFile string
	//密钥路径
	KeyFile        string
	NewSessionFunc func(*Conn) network.Session
	AuthFunc       func(*http.Request) (bool, any)
	//收发缓冲区大小，决定gorilla底层io buffer
	ReadBufferSize  int
	WriteBufferSize int

	ln      net.Listener
	handler *handlerDTO
}

type handlerDTO struct {
	authFunc       func(*http.Request) (bool, any)
	maxMsgLen      int64
	newSessionFunc func(*Conn) network.Session
	upgrader       websocket.Upgrader
	conns          *set.Set[*websocket.Conn]
	mutexConns     sync.Mutex
	wg             sync.WaitGroup
}

type Option func(*Server)

func NewServer(port int, newSessionFunc func(*Conn) network.Session, options ...Option) *Server {
	if port <= 0 || port > 65535 {
		return nil
	}
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	server := &Server{
		Addr:           addr,
		MaxMsgLen:      1024000,
		HTTPTimeout:    10 * time.Second,
		NewSessionFunc: newSessionFunc,
	}
	for _, option := range options {
		option(server)
	}
	return server
}

func WithMaxMsgLen(num int64) Option {
	return func(server *Server) {
		server.MaxMsgLen = num
	}
}

func WithHttpTimeout(duration time.Duration) Option {
	return func(server *Server) {
		server.HTTPTimeout = duration
	}
}

func WithHttpsCert(cert, key string) Option {
	return func(server *Server) {
		server.CertFile = cert
		server.KeyFile = key
	}
}

func WithAuthFunc(authFunc func(*http.Request) (bool, any)) Option {
	return func(server *Server) {
		server.AuthFunc = authFunc
	}
}

func WithBufferSize(read, write int) Option {
	return func(server *Server) {
		server.ReadBufferSize = read
		server.WriteBufferSize = write
	}
}

func getRealIP(req *http.Request) net.Addr {
	ip := req.Header.Get("X-FORWARDED-FOR")
	if ip == "" {
		ip = req.Header.Get("X-REAL-IP")
	}
	if ip != "" {
		ip = strings.Split(ip, ",")[0]
	} else {
		ip, _, _ = net.SplitHostPort(req.RemoteAddr)
	}
	q := net.ParseIP(ip)
	addr := &net.IPAddr{IP: q}
	return addr
}

func (handler *handlerDTO) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	var (
		ok       bool
		userData any
	)
	if handler.authFunc != nil {
		if ok, userData = handler.authFunc(r); !ok {
			http.Error(w, "Forbidden", 403)
			return
		}
	}
	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("upgrade error: %v", err)
		return
	}

	handler.wg.Add(1)
	defer handler.wg.Done()

	handler.mutexConns.Lock()
	if handler.conns == nil {
		handler.mutexConns.Unlock()
		_ = conn.Close()
		return
	}
	handler.conns.AddItem(conn)
	handler.mutexConns.Unlock()

	wsConn := newWSConn(conn, handler.maxMsgLen)
	wsConn.remoteOriginIP = getRealIP(r)
	wsConn.userData = userData
	session := handler.newSessionFunc(wsConn)
	session.Run()

	// cleanup
	wsConn.Close()
	handler.mutexConns.Lock()
	if handler.conns != nil {
		handler.conns.RemoveItem(conn)
	}
	handler.mutexConns.Unlock()
	session.OnClose()
}

// Handler 返回http.Handler，方便挂到外部的路由框架下面
// 这种用法下Start/Close由外部框架接管
func (server *Server) Handler() http.Handler {
	server.buildHandler()
	return server.handler
}

func (server *Server) buildHandler() {
	if server.handler != nil {
		return
	}
	if server.MaxMsgLen <= 0 {
		server.MaxMsgLen = 1024000
		log.Info("invalid MaxMsgLen, reset to %v", server.MaxMsgLen)
	}
	if server.HTTPTimeout <= 0 {
		server.HTTPTimeout = 10 * time.Second
		log.Info("invalid HTTPTimeout, reset to %v", server.HTTPTimeout)
	}
	if server.NewSessionFunc == nil {
		log.Fatal("NewSessionFunc must not be nil")
	}
	server.handler = &handlerDTO{
		authFunc:       server.AuthFunc,
		maxMsgLen:      server.MaxMsgLen,
		newSessionFunc: server.NewSessionFunc,
		conns:          set.NewSet[*websocket.Conn](),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: server.HTTPTimeout,
			ReadBufferSize:   server.ReadBufferSize,
			WriteBufferSize:  server.WriteBufferSize,
			CheckOrigin:      func(_ *http.Request) bool { return true },
		},
	}
}

func (server *Server) Start() {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatal("fail to start tcp server: %v", err)
	}

	server.buildHandler()

	if server.CertFile != "" || server.KeyFile != "" {
		config := &tls.Config{}
		config.NextProtos = []string{"http/1.1"}

		var err error
		config.Certificates = make([]tls.Certificate, 1)
		config.Certificates[0], err = tls.LoadX509KeyPair(server.CertFile, server.KeyFile)
		if err != nil {
			log.Fatal("%v", err)
		}

		ln = tls.NewListener(ln, config)
	}

	server.ln = ln
	httpServer := &http.Server{
		Addr:           server.Addr,
		Handler:        server.handler,
		ReadTimeout:    server.HTTPTimeout,
		WriteTimeout:   server.HTTPTimeout,
		MaxHeaderBytes: 1024,
	}

	go func() {
		if err = httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatal("fail to start websocket server:%v", err)
		}
	}()
}

func (server *Server) Close() {
	if server.ln != nil {
		_ = server.ln.Close()
	}
	if server.handler == nil {
		return
	}

	server.handler.mutexConns.Lock()
	server.handler.conns.ForEach(func(conn *websocket.Conn) {
		_ = conn.Close()
	})
	server.handler.conns = nil
	server.handler.mutexConns.Unlock()

	server.handler.wg.Wait()
}
