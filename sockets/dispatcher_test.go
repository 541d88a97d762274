package sockets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

/**
  *  @author tryao
  *  @date 2022/09/07 10:30
**/

func TestMethodTable_CaseInsensitive(t *testing.T) {
	table := NewMethodTable().
		Handle("SendMessage", Action1(func(s *Session, text string) error { return nil }))

	for _, name := range []string{"SendMessage", "sendmessage", "SENDMESSAGE", "sendMessage"} {
		_, ok := table.Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := table.Lookup("sendmessage2")
	assert.False(t, ok)
	//Names保留注册时的原始大小写
	assert.Equal(t, []string{"SendMessage"}, table.Names())
}

func TestMethodTable_Overwrite(t *testing.T) {
	table := NewMethodTable().
		Handle("Echo", Func0(func(s *Session) (string, error) { return "old", nil })).
		Handle("echo", Func0(func(s *Session) (string, error) { return "new", nil }))

	assert.Len(t, table.Names(), 1)
	m, ok := table.Lookup("ECHO")
	assert.True(t, ok)
	got, err := m.invoke(nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestAdapters_Invoke(t *testing.T) {
	add := Func2(func(s *Session, a, b int64) (int64, error) { return a + b, nil })
	assert.Equal(t, 2, add.Arity())
	assert.True(t, add.HasReturn())
	//json解码出来的数字都是float64
	got, err := add.invoke(nil, []any{float64(1), float64(2)})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), got)

	join := Func3(func(s *Session, a, b, c string) (string, error) { return a + b + c, nil })
	got, err = join.invoke(nil, []any{"x", "y", "z"})
	assert.NoError(t, err)
	assert.Equal(t, "xyz", got)

	ping := Action0(func(s *Session) error { return nil })
	assert.Zero(t, ping.Arity())
	assert.False(t, ping.HasReturn())
	got, err = ping.invoke(nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	now := Func0(func(s *Session) (string, error) { return "12:00", nil })
	assert.Equal(t, "", now.zeroRet)
}

func TestAdapters_StructArgument(t *testing.T) {
	type point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	norm := Func1(func(s *Session, p point) (float64, error) { return p.X*p.X + p.Y*p.Y, nil })
	got, err := norm.invoke(nil, []any{map[string]any{"x": float64(3), "y": float64(4)}})
	assert.NoError(t, err)
	assert.Equal(t, float64(25), got)
}

func TestAdapters_ArgumentMismatch(t *testing.T) {
	swap := Action2(func(s *Session, a int64, b string) error { return nil })
	_, err := swap.invoke(nil, []any{"abc", "ok"})
	var am *ArgumentMismatchError
	assert.True(t, errors.As(err, &am))
	assert.Equal(t, 0, am.Position)

	_, err = swap.invoke(nil, []any{float64(1), []any{1}})
	assert.True(t, errors.As(err, &am))
	assert.Equal(t, 1, am.Position)
}

func TestAdapters_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	fail := Func1(func(s *Session, n int64) (int64, error) { return 0, boom })
	_, err := fail.invoke(nil, []any{float64(1)})
	assert.ErrorIs(t, err, boom)
}
