package sockets

/**
  *  @author tryao
  *  @date 2022/09/06 15:30
**/

import (
	"strings"

	"github.com/wushian/fireasy2/base/log"
)

// Method 注册表里的一个方法，由Action/Func系列适配器构造
// 适配器在注册时就确定了参数个数和返回值类型
type Method struct {
	arity   int
	hasRet  bool
	zeroRet any
	invoke  func(s *Session, args []any) (any, error)
}

// Arity 参数个数，不含session
func (m Method) Arity() int {
	return m.arity
}

// HasReturn 是否有返回值
func (m Method) HasReturn() bool {
	return m.hasRet
}

type methodEntry struct {
	name   string //注册时的原始名字
	method Method
}

// MethodTable 方法注册表，按名字查找，不区分大小写
// 注册完成后再投入路由，路由期间不要再注册
type MethodTable struct {
	methods map[string]*methodEntry
}

func NewMethodTable() *MethodTable {
	return &MethodTable{methods: make(map[string]*methodEntry)}
}

// Handle 注册方法，重名时后注册的生效
func (t *MethodTable) Handle(name string, m Method) *MethodTable {
	key := strings.ToLower(name)
	if old, ok := t.methods[key]; ok {
		log.Warn("method %s is already registered as %s, overwrite", name, old.name)
	}
	t.methods[key] = &methodEntry{name: name, method: m}
	return t
}

// Lookup 查找方法，名字不区分大小写
func (t *MethodTable) Lookup(name string) (Method, bool) {
	e, ok := t.methods[strings.ToLower(name)]
	if !ok {
		return Method{}, false
	}
	return e.method, true
}

// Names 所有注册的方法名（原始大小写）
func (t *MethodTable) Names() []string {
	r := make([]string, 0, len(t.methods))
	for _, e := range t.methods {
		r = append(r, e.name)
	}
	return r
}

// 按位置转换参数，失败时带上位置信息
func arg[T any](args []any, i int) (T, error) {
	v, err := To[T](args[i])
	if err != nil {
		return v, &ArgumentMismatchError{Position: i, Cause: err}
	}
	return v, nil
}

// Action0 无参数无返回值的方法
func Action0(fn func(s *Session) error) Method {
	return Method{
		invoke: func(s *Session, _ []any) (any, error) {
			return nil, fn(s)
		},
	}
}

func Action1[A any](fn func(s *Session, a A) error) Method {
	return Method{
		arity: 1,
		invoke: func(s *Session, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return nil, fn(s, a)
		},
	}
}

func Action2[A, B any](fn func(s *Session, a A, b B) error) Method {
	return Method{
		arity: 2,
		invoke: func(s *Session, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			return nil, fn(s, a, b)
		},
	}
}

func Action3[A, B, C any](fn func(s *Session, a A, b B, c C) error) Method {
	return Method{
		arity: 3,
		invoke: func(s *Session, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			c, err := arg[C](args, 2)
			if err != nil {
				return nil, err
			}
			return nil, fn(s, a, b, c)
		},
	}
}

// Func0 无参数有返回值的方法
func Func0[R any](fn func(s *Session) (R, error)) Method {
	var zero R
	return Method{
		hasRet:  true,
		zeroRet: zero,
		invoke: func(s *Session, _ []any) (any, error) {
			return fn(s)
		},
	}
}

func Func1[A, R any](fn func(s *Session, a A) (R, error)) Method {
	var zero R
	return Method{
		arity:   1,
		hasRet:  true,
		zeroRet: zero,
		invoke: func(s *Session, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return fn(s, a)
		},
	}
}

func Func2[A, B, R any](fn func(s *Session, a A, b B) (R, error)) Method {
	var zero R
	return Method{
		arity:   2,
		hasRet:  true,
		zeroRet: zero,
		invoke: func(s *Session, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			return fn(s, a, b)
		},
	}
}

func Func3[A, B, C, R any](fn func(s *Session, a A, b B, c C) (R, error)) Method {
	var zero R
	return Method{
		arity:   3,
		hasRet:  true,
		zeroRet: zero,
		invoke: func(s *Session, args []any) (any, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			c, err := arg[C](args, 2)
			if err != nil {
				return nil, err
			}
			return fn(s, a, b, c)
		},
	}
}
