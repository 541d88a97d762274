package sockets

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

/**
  *  @author tryao
  *  @date 2022/09/07 11:40
**/

func newTestSession() (*Session, *fakeConn) {
	conn := newFakeConn()
	s := NewSession(conn, &Option{HeartbeatInterval: -1})
	return s, conn
}

func TestClientManager_AddRemove(t *testing.T) {
	mgr := NewClientManager()
	s1, _ := newTestSession()
	s2, _ := newTestSession()
	mgr.Add(s1)
	mgr.Add(s2)
	assert.Equal(t, 2, mgr.Count())

	got, ok := mgr.Client(s1.ConnectionID())
	assert.True(t, ok)
	assert.Same(t, s1, got)

	mgr.Remove(s1.ConnectionID())
	assert.Equal(t, 1, mgr.Count())
	_, ok = mgr.Client(s1.ConnectionID())
	assert.False(t, ok)
	//重复移除无副作用
	mgr.Remove(s1.ConnectionID())
	assert.Equal(t, 1, mgr.Count())
}

func TestClientManager_Groups(t *testing.T) {
	mgr := NewClientManager()
	s1, _ := newTestSession()
	s2, _ := newTestSession()
	s3, _ := newTestSession()
	for _, s := range []*Session{s1, s2, s3} {
		mgr.Add(s)
	}
	mgr.AddToGroup(s1.ConnectionID(), "room")
	mgr.AddToGroup(s2.ConnectionID(), "room")

	assert.True(t, mgr.InGroup(s1.ConnectionID(), "room"))
	assert.False(t, mgr.InGroup(s3.ConnectionID(), "room"))
	assert.Len(t, mgr.Group("room"), 2)

	mgr.RemoveFromGroup(s1.ConnectionID(), "room")
	assert.False(t, mgr.InGroup(s1.ConnectionID(), "room"))
	assert.Len(t, mgr.Group("room"), 1)

	//注销连接时自动退出所有分组
	mgr.Remove(s2.ConnectionID())
	assert.Empty(t, mgr.Group("room"))

	//不存在的连接进组是no-op
	mgr.AddToGroup("ghost", "room")
	assert.False(t, mgr.InGroup("ghost", "room"))
}

func TestClientManager_SendTo(t *testing.T) {
	mgr := NewClientManager()
	s1, c1 := newTestSession()
	mgr.Add(s1)

	assert.NoError(t, mgr.SendTo(s1.ConnectionID(), "Notify", "hi"))
	msgs := c1.messages()
	assert.Len(t, msgs, 1)
	assert.JSONEq(t, `{"method":"Notify","isReturn":0,"arguments":["hi"]}`, string(msgs[0].Data))

	assert.ErrorIs(t, mgr.SendTo("ghost", "Notify"), ErrClientNotFound)
}

func TestClientManager_GroupSendAndBroadcast(t *testing.T) {
	mgr := NewClientManager()
	s1, c1 := newTestSession()
	s2, c2 := newTestSession()
	s3, c3 := newTestSession()
	for _, s := range []*Session{s1, s2, s3} {
		mgr.Add(s)
	}
	mgr.AddToGroup(s1.ConnectionID(), "room")
	mgr.AddToGroup(s2.ConnectionID(), "room")

	mgr.SendToGroup("room", "Tick")
	assert.Len(t, c1.messages(), 1)
	assert.Len(t, c2.messages(), 1)
	assert.Empty(t, c3.messages())

	mgr.Broadcast("Bye", "all")
	assert.Len(t, c1.messages(), 2)
	assert.Len(t, c2.messages(), 2)
	assert.Len(t, c3.messages(), 1)
	assert.JSONEq(t, `{"method":"Bye","isReturn":0,"arguments":["all"]}`, string(c3.messages()[0].Data))
}

func TestClientManager_Concurrency(t *testing.T) {
	mgr := NewClientManager()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _ := newTestSession()
			group := fmt.Sprintf("g%d", i%4)
			mgr.Add(s)
			mgr.AddToGroup(s.ConnectionID(), group)
			mgr.SendToGroup(group, "Ping")
			mgr.Broadcast("Tick")
			mgr.Remove(s.ConnectionID())
		}(i)
	}
	wg.Wait()
	assert.Zero(t, mgr.Count())
	for i := 0; i < 4; i++ {
		assert.Empty(t, mgr.Group(fmt.Sprintf("g%d", i)))
	}
}
