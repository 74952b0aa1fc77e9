package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"LocalBoard/internal/state"
)

const (
	LivePath = "/live"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Viewers only ever send control frames.
	maxMessageSize = 512
	sendBuffer     = 16

	// In-progress strokes are published at most this often.
	strokeInterval = 50 * time.Millisecond
)

const (
	MessageHello    = "hello"
	MessageSnapshot = "snapshot"
)

// Message is what the live view sends to viewers.
type Message struct {
	Type     string          `json:"type"`
	Session  string          `json:"session"`
	Snapshot *state.Snapshot `json:"snapshot,omitempty"`
}

// LiveView broadcasts board snapshots to read-only websocket viewers. The
// drawing state is never touched here; the owner publishes snapshots.
type LiveView struct {
	upgrader websocket.Upgrader
	session  string
	now      func() time.Time

	lastStroke time.Time

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	latest  []byte
	closed  bool
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

func NewLiveView() *LiveView {
	return &LiveView{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		session: state.SessionID(),
		now:     time.Now,
		viewers: make(map[*viewer]struct{}),
	}
}

// Follow returns a DrawingState change observer that publishes snapshot().
// Stroke changes are throttled; every other change publishes at once, so
// commits, undo and redo always reach viewers. It must be called from the
// goroutine that owns the state.
func (lv *LiveView) Follow(snapshot func() state.Snapshot) func(state.Change) {
	return func(c state.Change) {
		if c.Type == state.ChangeStroke {
			now := lv.now()
			if now.Sub(lv.lastStroke) < strokeInterval {
				return
			}
			lv.lastStroke = now
		}
		if err := lv.Publish(snapshot()); err != nil {
			logrus.WithError(err).Warn("Failed to publish snapshot")
		}
	}
}

// Publish sends snap to every viewer and keeps it for viewers that connect
// later. A viewer whose buffer is full misses this snapshot.
func (lv *LiveView) Publish(snap state.Snapshot) error {
	data, err := json.Marshal(Message{Type: MessageSnapshot, Session: lv.session, Snapshot: &snap})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	lv.mu.Lock()
	defer lv.mu.Unlock()
	if lv.closed {
		return nil
	}
	lv.latest = data
	for v := range lv.viewers {
		select {
		case v.send <- data:
		default:
			logrus.WithField("viewer", v.conn.RemoteAddr().String()).Debug("Viewer is slow, skipping snapshot")
		}
	}
	return nil
}

// Viewers returns the number of connected viewers.
func (lv *LiveView) Viewers() int {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	return len(lv.viewers)
}

func (lv *LiveView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := lv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("Live view upgrade failed")
		return
	}
	v := &viewer{conn: conn, send: make(chan []byte, sendBuffer)}

	hello, _ := json.Marshal(Message{Type: MessageHello, Session: lv.session})
	lv.mu.Lock()
	if lv.closed {
		lv.mu.Unlock()
		conn.Close()
		return
	}
	lv.viewers[v] = struct{}{}
	v.send <- hello
	if lv.latest != nil {
		v.send <- lv.latest
	}
	lv.mu.Unlock()

	logrus.WithField("viewer", conn.RemoteAddr().String()).Info("Viewer connected")
	go lv.writePump(v)
	go lv.readPump(v)
}

func (lv *LiveView) remove(v *viewer) {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	if _, ok := lv.viewers[v]; ok {
		delete(lv.viewers, v)
		close(v.send)
	}
}

// readPump drains control frames so pongs and close frames are processed.
func (lv *LiveView) readPump(v *viewer) {
	defer func() {
		lv.remove(v)
		v.conn.Close()
		logrus.WithField("viewer", v.conn.RemoteAddr().String()).Info("Viewer disconnected")
	}()

	v.conn.SetReadLimit(maxMessageSize)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("Viewer read error")
			}
			return
		}
	}
}

func (lv *LiveView) writePump(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logrus.WithError(err).Debug("Viewer write failed")
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every viewer and stops accepting new ones.
func (lv *LiveView) Close() {
	lv.mu.Lock()
	defer lv.mu.Unlock()
	lv.closed = true
	for v := range lv.viewers {
		delete(lv.viewers, v)
		close(v.send)
	}
}

// ListenAndServe serves the live view on addr until ctx is done.
func (lv *LiveView) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle(LivePath, lv)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("Live view listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("live view server: %w", err)
	case <-ctx.Done():
		lv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("live view shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Watch connects to a live view at url and calls fn for every message until
// ctx is done or the host goes away.
func Watch(ctx context.Context, url string, fn func(Message)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("live view read: %w", err)
		}
		fn(msg)
	}
}
