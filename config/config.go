package config

/**
  *  @author tryao
  *  @date 2022/09/09 09:20
**/

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/wushian/fireasy2/base/log"
	"github.com/wushian/fireasy2/sockets"
)

const envPrefix = "fireasy"

type Config struct {
	Server   ServerConfig
	Socket   SocketConfig
	Log      LogConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	//监听地址，例如:8080
	Addr string
	//websocket挂载的路径
	Pattern         string
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	MaxMsgLen       int64         `mapstructure:"max_msg_len"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	CertFile        string        `mapstructure:"cert_file"`
	KeyFile         string        `mapstructure:"key_file"`
}

type SocketConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatTryTimes int           `mapstructure:"heartbeat_try_times"`
	ReceiveBufferSize int           `mapstructure:"receive_buffer_size"`
	//文本编码名，空或utf-8表示不转码，其余按IANA名字解析，如gbk
	Encoding     string
	MessageRate  float64 `mapstructure:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst"`
}

type LogConfig struct {
	Name  string
	Level string
	//console、file，用|组合
	Out        string
	Path       string
	MaxSize    int `mapstructure:"max_size"`
	MaxAge     int `mapstructure:"max_age"`
	MaxBackups int `mapstructure:"max_backups"`
	Rotate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

func (c DatabaseConfig) Enabled() bool {
	return c.Driver != ""
}

// Load 读配置文件并应用FIREASY_前缀的环境变量覆盖
// path为空时只用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.pattern", "/ws")
	v.SetDefault("server.http_timeout", "10s")
	v.SetDefault("socket.heartbeat_interval", "30s")
	v.SetDefault("socket.heartbeat_try_times", sockets.DefaultHeartbeatTryTimes)
	v.SetDefault("socket.receive_buffer_size", sockets.DefaultReceiveBufferSize)
	v.SetDefault("socket.encoding", "")
	v.SetDefault("log.name", "fireasy")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.out", "console")
}

// BuildOption 按配置组装会话参数，注册表、回调等由调用方补充
func (c SocketConfig) BuildOption() (*sockets.Option, error) {
	opt := &sockets.Option{
		HeartbeatInterval: c.HeartbeatInterval,
		HeartbeatTryTimes: c.HeartbeatTryTimes,
		ReceiveBufferSize: c.ReceiveBufferSize,
		MessageRate:       c.MessageRate,
		MessageBurst:      c.MessageBurst,
	}
	name := strings.ToLower(strings.TrimSpace(c.Encoding))
	if name != "" && name != "utf-8" && name != "utf8" {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", c.Encoding, err)
		}
		opt.Encoding = enc
	}
	return opt, nil
}

// Setup 应用日志配置
func (c LogConfig) Setup() {
	log.Builder.
		Name(c.Name).
		Path(c.Path).
		Level(log.Level(c.Level)).
		OutType(log.OutTypeAlias(c.Out)).
		MaxSize(c.MaxSize).
		MaxAge(c.MaxAge).
		MaxBackUps(c.MaxBackups).
		EnableRotate(c.Rotate).
		Build()
}
