package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeConn struct {
	mu        sync.Mutex
	frames    [][]byte
	pings     int
	deadlines int
	closed    bool
	err       error

	// when set, writes report on started and wait for block to close
	started chan struct{}
	block   chan struct{}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if c.block != nil {
		c.started <- struct{}{}
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if messageType == websocket.PingMessage {
		c.pings++
		return nil
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines++
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestRealtimeHubPublish(t *testing.T) {
	hub := NewRealtimeHub(nopLog)
	alice, bob := uuid.New(), uuid.New()

	c1, c2, c3 := &fakeConn{}, &fakeConn{}, &fakeConn{}
	w1 := &WSClient{UserID: alice, Conn: c1}
	w2 := &WSClient{UserID: alice, Conn: c2}
	w3 := &WSClient{UserID: bob, Conn: c3}
	hub.Register(w1)
	hub.Register(w2)
	hub.Register(w3)
	assert.Equal(t, 2, hub.Connections(alice))

	hub.Publish(alice, EventFavoriteAdded, map[string]string{"food_id": "x"})
	require.Len(t, c1.frames, 1)
	require.Len(t, c2.frames, 1)
	assert.Empty(t, c3.frames)
	assert.Equal(t, EventFavoriteAdded, gjson.GetBytes(c1.frames[0], "kind").String())
	assert.Equal(t, "x", gjson.GetBytes(c1.frames[0], "data.food_id").String())

	hub.Unregister(w1)
	assert.True(t, c1.closed)
	assert.Equal(t, 1, hub.Connections(alice))
	hub.Unregister(w2)
	assert.Zero(t, hub.Connections(alice))

	require.NoError(t, w3.Ping())
	assert.Equal(t, 1, c3.pings)
	assert.Empty(t, c3.frames)
}

func TestRealtimeHubWriteFailure(t *testing.T) {
	hub := NewRealtimeHub(nopLog)
	user := uuid.New()
	broken := &fakeConn{err: errors.New("closed pipe")}
	ok := &fakeConn{}
	hub.Register(&WSClient{UserID: user, Conn: broken})
	hub.Register(&WSClient{UserID: user, Conn: ok})

	hub.Publish(user, EventProgressRecorded, 1)
	assert.Len(t, ok.frames, 1)

	// unmarshalable payloads are dropped
	hub.Publish(user, EventProgressRecorded, make(chan int))
	assert.Len(t, ok.frames, 1)
}

func TestRealtimeHubStalledWriter(t *testing.T) {
	hub := NewRealtimeHub(nopLog)
	user := uuid.New()
	stalled := &fakeConn{started: make(chan struct{}, 1), block: make(chan struct{})}
	hub.Register(&WSClient{UserID: user, Conn: stalled})

	published := make(chan struct{})
	go func() {
		hub.Publish(user, EventProgressRecorded, 1)
		close(published)
	}()
	<-stalled.started

	other := &WSClient{UserID: uuid.New(), Conn: &fakeConn{}}
	registered := make(chan struct{})
	go func() {
		hub.Register(other)
		hub.Unregister(other)
		close(registered)
	}()
	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("register blocked behind a pending write")
	}

	close(stalled.block)
	<-published
	assert.Len(t, stalled.frames, 1)
	assert.Equal(t, 1, stalled.deadlines)
}
