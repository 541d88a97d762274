package main

/**  聊天室示例，把引擎和各个协作者拼起来
  *  @author tryao
  *  @date 2022/09/09 14:05
**/

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-redis/redis/v8"
	_ "modernc.org/sqlite"

	"github.com/wushian/fireasy2/base/log"
	"github.com/wushian/fireasy2/caching"
	"github.com/wushian/fireasy2/config"
	"github.com/wushian/fireasy2/data"
	"github.com/wushian/fireasy2/ginutil"
	"github.com/wushian/fireasy2/network"
	"github.com/wushian/fireasy2/sockets"
	"github.com/wushian/fireasy2/subscribe"
	"github.com/wushian/fireasy2/ws"
)

const schema = `create table if not exists chat_message (
	id integer primary key autoincrement,
	room text not null,
	sender text not null,
	body text not null,
	sent_at integer not null
)`

type Message struct {
	Id     int64  `json:"id" fieldopt:"omitempty"`
	Room   string `json:"room"`
	Sender string `json:"sender"`
	Body   string `json:"body"`
	SentAt int64  `json:"sentAt"`
}

//房间内的消息先过总线再扇出，接redis之后可以横向扩展
var roomTopic = subscribe.NewTopic[Message]("chat.room")

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "c", "", "配置文件路径，空表示用默认配置")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("load config: %v", err)
	}
	cfg.Log.Setup()
	log.Info("Server starting up...")

	driver, dsn := cfg.Database.Driver, cfg.Database.DSN
	if driver == "" {
		driver, dsn = "sqlite", "file:chat?mode=memory&cache=shared"
	}
	db, err := data.Open(driver, dsn)
	if err != nil {
		log.Fatal("open database: %v", err)
	}
	defer func() { _ = db.Close() }()
	if _, err = db.Exec(schema); err != nil {
		log.Fatal("init schema: %v", err)
	}
	repo := data.NewRepository[Message](db, "chat_message")

	//单机默认全部进程内，配了redis就换成共享实现
	var cache caching.CacheManager = caching.NewMemoryCache()
	var bus subscribe.SubscribeManager = subscribe.NewMemoryManager()
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		cache = caching.NewRedisCache(client)
		bus = subscribe.NewRedisManager(client)
	}
	defer func() { _ = bus.Close() }()

	manager := sockets.NewClientManager()
	metrics := sockets.NewMetrics(nil)

	cancelSub, err := roomTopic.Subscribe(bus, func(m Message) {
		manager.SendToGroup(m.Room, "OnRoomMessage", m)
	})
	if err != nil {
		log.Fatal("subscribe room topic: %v", err)
	}
	defer cancelSub()

	opt, err := cfg.Socket.BuildOption()
	if err != nil {
		log.Fatal("socket option: %v", err)
	}
	opt.Table = buildTable(repo, cache, bus, manager)
	opt.Manager = manager
	opt.Metrics = metrics
	opt.Events = sockets.Events{
		OnConnected: func(s *sockets.Session) {
			log.Info("client %s connected from %v", s.ConnectionID(), s.RemoteAddr())
		},
		OnDisconnected: func(s *sockets.Session) {
			if name, ok := s.UserData().(string); ok && name != "" {
				_ = cache.Remove(context.Background(), "online:"+name)
			}
			log.Info("client %s disconnected", s.ConnectionID())
		},
	}

	srv := &ws.Server{
		MaxMsgLen:       cfg.Server.MaxMsgLen,
		HTTPTimeout:     cfg.Server.HTTPTimeout,
		ReadBufferSize:  cfg.Server.ReadBufferSize,
		WriteBufferSize: cfg.Server.WriteBufferSize,
		NewSessionFunc: func(conn *ws.Conn) network.Session {
			return sockets.NewSession(conn, opt)
		},
	}

	router := ginutil.InitRouter()
	ginutil.EnableMetrics(router)
	ginutil.MountWebSocket(router, cfg.Server.Pattern, srv)

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		log.Info("chat server listening on %s, ws at %s", cfg.Server.Addr, cfg.Server.Pattern)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("serve: %v", err)
		}
	}()

	closeChannel := make(chan os.Signal, 1)
	signal.Notify(closeChannel, os.Interrupt, os.Kill)
	<-closeChannel
	log.Info("Server closing down...")

	//先停新连接，再逐个优雅关闭存量会话
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	manager.Range(func(s *sockets.Session) bool {
		s.Close()
		return true
	})
	log.Flush()
}

func buildTable(repo *data.Repository[Message], cache caching.CacheManager,
	bus subscribe.SubscribeManager, manager *sockets.ClientManager) *sockets.MethodTable {
	return sockets.NewMethodTable().
		Handle("Join", sockets.Action2(func(s *sockets.Session, name, room string) error {
			s.SetUserData(name)
			manager.AddToGroup(s.ConnectionID(), room)
			//在线标记，静默半小时过期
			return cache.Set(context.Background(), "online:"+name, []byte(s.ConnectionID()), 30*time.Minute)
		})).
		Handle("Say", sockets.Action2(func(s *sockets.Session, room, text string) error {
			name, _ := s.UserData().(string)
			if name == "" {
				return errors.New("join first")
			}
			msg := Message{Room: room, Sender: name, Body: text, SentAt: time.Now().Unix()}
			if err := repo.Insert(context.Background(), &msg); err != nil {
				return err
			}
			return roomTopic.Publish(context.Background(), bus, msg)
		})).
		Handle("Echo", sockets.Func1(func(s *sockets.Session, text string) (string, error) {
			return text, nil
		})).
		Handle("History", sockets.Func2(func(s *sockets.Session, room string, n int) ([]Message, error) {
			return repo.SelectOrder(context.Background(), "-id", n, data.Eq("room", room))
		}))
}
