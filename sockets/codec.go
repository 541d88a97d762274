package sockets

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
)

// MessageFormatter 信封的序列化器，可以换成自定义格式
// 实现必须goroutine safe
type MessageFormatter interface {
	Marshal(msg *InvokeMessage) ([]byte, error)
	Unmarshal(data []byte) (*InvokeMessage, error)
}

// JsonFormatter 默认的json序列化器
type JsonFormatter struct{}

func (JsonFormatter) Marshal(msg *InvokeMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func (JsonFormatter) Unmarshal(data []byte) (*InvokeMessage, error) {
	var msg InvokeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Method == "" {
		return nil, errors.New("not an invoke message")
	}
	return &msg, nil
}

// Codec 组合formatter和文本编码
// Encoding为nil表示utf8，不做转码
type Codec struct {
	Formatter MessageFormatter
	Encoding  encoding.Encoding
}

// Encode 信封序列化之后按配置的编码转码
func (c *Codec) Encode(msg *InvokeMessage) ([]byte, error) {
	data, err := c.Formatter.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("format message: %w", err)
	}
	if c.Encoding == nil {
		return data, nil
	}
	return c.Encoding.NewEncoder().Bytes(data)
}

// DecodeText 只做字符集转换，返回utf8文本
func (c *Codec) DecodeText(data []byte) (string, error) {
	if c.Encoding == nil {
		return string(data), nil
	}
	out, err := c.Encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// Unmarshal 解析utf8文本里的信封
func (c *Codec) Unmarshal(text string) (*InvokeMessage, error) {
	return c.Formatter.Unmarshal([]byte(text))
}

// Decode 完整的解码过程，等价于DecodeText+Unmarshal
func (c *Codec) Decode(data []byte) (*InvokeMessage, error) {
	text, err := c.DecodeText(data)
	if err != nil {
		return nil, err
	}
	return c.Unmarshal(text)
}
