package sockets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestJsonFormatter_Unmarshal(t *testing.T) {
	type args struct {
		data string
	}
	tests := []struct {
		name    string
		args    args
		want    *InvokeMessage
		wantErr bool
	}{
		{"request", args{`{"method":"Say","isReturn":0,"arguments":["hi",1]}`},
			&InvokeMessage{Method: "Say", Arguments: []any{"hi", float64(1)}}, false},
		{"response", args{`{"method":"Say","isReturn":1,"arguments":["ok"]}`},
			&InvokeMessage{Method: "Say", IsReturn: 1, Arguments: []any{"ok"}}, false},
		{"no method", args{`{"isReturn":0}`}, nil, true},
		{"bad json", args{`{"method":`}, nil, true},
		{"plain text", args{`hello`}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JsonFormatter{}.Unmarshal([]byte(tt.args.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := &Codec{Formatter: JsonFormatter{}}
	msg := NewRequest("Echo", "hello", float64(3))
	data, err := c.Encode(msg)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"method":"Echo","isReturn":0,"arguments":["hello",3]}`, string(data))

	got, err := c.Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCodec_GBK(t *testing.T) {
	gbk := &Codec{Formatter: JsonFormatter{}, Encoding: simplifiedchinese.GBK}
	utf8 := &Codec{Formatter: JsonFormatter{}}
	msg := NewRequest("Say", "你好，世界")

	data, err := gbk.Encode(msg)
	assert.NoError(t, err)
	plain, err := utf8.Encode(msg)
	assert.NoError(t, err)
	//转码之后字节不同
	assert.NotEqual(t, plain, data)

	got, err := gbk.Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, "你好，世界", got.Arguments[0])
}

//管道分隔的极简格式，用来验证formatter可替换
type pipeFormatter struct{}

func (pipeFormatter) Marshal(msg *InvokeMessage) ([]byte, error) {
	parts := []string{msg.Method, strconv.Itoa(msg.IsReturn)}
	for _, a := range msg.Arguments {
		parts = append(parts, fmt.Sprint(a))
	}
	return []byte(strings.Join(parts, "|")), nil
}

func (pipeFormatter) Unmarshal(data []byte) (*InvokeMessage, error) {
	parts := strings.Split(string(data), "|")
	if len(parts) < 2 || parts[0] == "" {
		return nil, errors.New("bad frame")
	}
	ret, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, err
	}
	msg := &InvokeMessage{Method: parts[0], IsReturn: ret, Arguments: []any{}}
	for _, p := range parts[2:] {
		msg.Arguments = append(msg.Arguments, p)
	}
	return msg, nil
}

func TestCodec_CustomFormatter(t *testing.T) {
	c := &Codec{Formatter: pipeFormatter{}}
	data, err := c.Encode(NewRequest("Say", "hi"))
	assert.NoError(t, err)
	assert.Equal(t, "Say|0|hi", string(data))

	got, err := c.Decode(data)
	assert.NoError(t, err)
	assert.Equal(t, "Say", got.Method)
	assert.Equal(t, []any{"hi"}, got.Arguments)
}

func TestNewResponse_SingleElement(t *testing.T) {
	msg := NewResponse("List", []string{"a", "b"})
	//返回值整体作为唯一元素，而不是展开
	assert.Equal(t, 1, len(msg.Arguments))
	assert.Equal(t, 1, msg.IsReturn)
	assert.False(t, msg.IsRequest())

	req := NewRequest("List")
	assert.NotNil(t, req.Arguments)
	assert.True(t, req.IsRequest())
}
