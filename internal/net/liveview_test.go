package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalBoard/internal/state"
)

func startLiveView(t *testing.T) (*LiveView, string) {
	t.Helper()
	lv := NewLiveView()
	srv := httptest.NewServer(lv)
	t.Cleanup(func() {
		lv.Close()
		srv.Close()
	})
	return lv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func boardWithStroke() *state.DrawingState {
	d := state.NewDrawingState()
	d.SetTool(state.ToolPen)
	d.StartNewPath(state.Point{X: 1, Y: 1})
	d.AddPointToCurrentPath(state.Point{X: 2, Y: 2})
	d.FinishCurrentPath()
	return d
}

func TestLiveViewPublish(t *testing.T) {
	lv, url := startLiveView(t)
	conn := dial(t, url)

	hello := read(t, conn)
	assert.Equal(t, MessageHello, hello.Type)
	assert.Equal(t, state.SessionID(), hello.Session)
	assert.Nil(t, hello.Snapshot)
	assert.Equal(t, 1, lv.Viewers())

	require.NoError(t, lv.Publish(boardWithStroke().Snapshot()))

	msg := read(t, conn)
	assert.Equal(t, MessageSnapshot, msg.Type)
	require.NotNil(t, msg.Snapshot)
	require.Len(t, msg.Snapshot.Paths, 1)
	assert.Equal(t, float32(4), msg.Snapshot.Paths[0].Width)
	assert.Equal(t, []state.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, msg.Snapshot.Paths[0].Points)
	assert.True(t, msg.Snapshot.CanUndo)
}

func TestLiveViewLatestOnConnect(t *testing.T) {
	lv, url := startLiveView(t)
	d := boardWithStroke()
	d.Undo()
	require.NoError(t, lv.Publish(d.Snapshot()))

	conn := dial(t, url)

	assert.Equal(t, MessageHello, read(t, conn).Type)
	msg := read(t, conn)
	require.NotNil(t, msg.Snapshot)
	assert.Empty(t, msg.Snapshot.Paths)
	assert.False(t, msg.Snapshot.CanUndo)
	assert.True(t, msg.Snapshot.CanRedo)
}

func TestWatch(t *testing.T) {
	lv, url := startLiveView(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan Message, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, url, func(m Message) { msgs <- m })
	}()

	select {
	case m := <-msgs:
		assert.Equal(t, MessageHello, m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no hello received")
	}

	require.NoError(t, lv.Publish(boardWithStroke().Snapshot()))
	select {
	case m := <-msgs:
		assert.Equal(t, MessageSnapshot, m.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchHostClosed(t *testing.T) {
	lv, url := startLiveView(t)
	hello := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(context.Background(), url, func(Message) { hello <- struct{}{} })
	}()
	<-hello

	lv.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after host closed")
	}
	assert.Zero(t, lv.Viewers())
	assert.NoError(t, lv.Publish(state.NewDrawingState().Snapshot()))
}

func TestWatchBadURL(t *testing.T) {
	err := Watch(context.Background(), "ws://127.0.0.1:1/live", func(Message) {})
	assert.Error(t, err)
}

func TestFollowThrottlesStrokes(t *testing.T) {
	lv := NewLiveView()
	clock := time.Unix(1000, 0)
	lv.now = func() time.Time { return clock }

	d := state.NewDrawingState()
	published := 0
	d.OnChange = lv.Follow(func() state.Snapshot {
		published++
		return d.Snapshot()
	})

	d.StartNewPath(state.Point{})
	assert.Equal(t, 1, published)

	d.AddPointToCurrentPath(state.Point{X: 1})
	d.AddPointToCurrentPath(state.Point{X: 2})
	assert.Equal(t, 1, published, "stroke updates inside the interval are skipped")

	clock = clock.Add(strokeInterval)
	d.AddPointToCurrentPath(state.Point{X: 3})
	assert.Equal(t, 2, published)

	d.AddPointToCurrentPath(state.Point{X: 4})
	d.FinishCurrentPath()
	d.Undo()
	d.Redo()
	assert.Equal(t, 5, published, "commit, undo and redo always publish")
}
