package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 64
)

// connWriter owns the write side of a connection. gorilla/websocket allows one
// concurrent writer, so every outbound frame goes through sendCh.
type connWriter struct {
	conn      *websocket.Conn
	clock     clockwork.Clock
	sendCh    chan []byte
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	onDropped func()
}

func newConnWriter(conn *websocket.Conn, clock clockwork.Clock, onDropped func()) *connWriter {
	if onDropped == nil {
		onDropped = func() {}
	}
	w := &connWriter{
		conn:      conn,
		clock:     clock,
		sendCh:    make(chan []byte, messageBufferSize),
		done:      make(chan struct{}),
		onDropped: onDropped,
	}
	w.configurePongHandler()
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *connWriter) run() {
	ticker := w.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer w.wg.Done()

	for {
		select {
		case msg := <-w.sendCh:
			w.updateWriteDeadline()
			if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("websocket write failed", "error", err)
				_ = w.conn.Close()
				return
			}
		case <-ticker.Chan():
			w.updateWriteDeadline()
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = w.conn.Close()
				return
			}
		case <-w.done:
			return
		}
	}
}

// send enqueues an event without blocking. Events are dropped when the client
// cannot keep up or the writer has stopped.
func (w *connWriter) send(event any) {
	msg, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode websocket event", "error", err)
		return
	}

	select {
	case <-w.done:
		return
	default:
	}

	select {
	case w.sendCh <- msg:
	default:
		w.onDropped()
	}
}

// stop discards queued events, writes a close frame once the run loop has
// exited and closes the connection. Safe to call more than once.
func (w *connWriter) stop(reason string) {
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		w.updateWriteDeadline()
		_ = w.conn.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = w.conn.Close()
	})
}

func (w *connWriter) configurePongHandler() {
	w.updateReadDeadline()
	w.conn.SetPongHandler(func(string) error {
		w.updateReadDeadline()
		return nil
	})
}

func (w *connWriter) updateWriteDeadline() {
	_ = w.conn.SetWriteDeadline(w.clock.Now().Add(writeDeadline))
}

func (w *connWriter) updateReadDeadline() {
	_ = w.conn.SetReadDeadline(w.clock.Now().Add(pongDeadline))
}
