package sockets

import (
	"errors"
	"fmt"
)

var (
	// ErrMethodNotFound 注册表里没有对应的方法
	ErrMethodNotFound = errors.New("method not found")
	// ErrClientNotFound 管理器里没有对应的连接
	ErrClientNotFound = errors.New("client not found")
	// ErrSessionClosed 会话已经关闭
	ErrSessionClosed = errors.New("session closed")
)

// ArgumentMismatchError 参数个数或者类型与注册的方法不匹配
// 个数不匹配时Position为-1
type ArgumentMismatchError struct {
	Method   string
	Expected int
	Actual   int
	Position int
	Cause    error
}

func (e *ArgumentMismatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("method %s: argument %d: %v", e.Method, e.Position, e.Cause)
	}
	return fmt.Sprintf("method %s expects %d arguments, got %d", e.Method, e.Expected, e.Actual)
}

func (e *ArgumentMismatchError) Unwrap() error {
	return e.Cause
}
