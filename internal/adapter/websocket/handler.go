package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/adapter/metrics"
	"github.com/pscheid92/notecanvas/internal/canvas"
	"github.com/pscheid92/notecanvas/internal/domain"
)

const maxMessageSize = 64 * 1024

// CanvasHandler serves the canvas socket. Every connection gets its own
// canvas.Controller; closing the socket is navigating away from the canvas.
type CanvasHandler struct {
	store    domain.NoteStore
	clock    clockwork.Clock
	cfg      canvas.Config
	upgrader websocket.Upgrader

	socketMetrics *metrics.WebSocketMetrics
	canvasMetrics *metrics.CanvasMetrics
}

type HandlerConfig struct {
	Canvas        canvas.Config
	CheckOrigin   func(r *http.Request) bool
	SocketMetrics *metrics.WebSocketMetrics
	CanvasMetrics *metrics.CanvasMetrics
}

func NewCanvasHandler(store domain.NoteStore, clock clockwork.Clock, cfg HandlerConfig) *CanvasHandler {
	if cfg.CanvasMetrics != nil && cfg.Canvas.Recorder == nil {
		cfg.Canvas.Recorder = cfg.CanvasMetrics
	}
	return &CanvasHandler{
		store: store,
		clock: clock,
		cfg:   cfg.Canvas,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		socketMetrics: cfg.SocketMetrics,
		canvasMetrics: cfg.CanvasMetrics,
	}
}

// ServeCanvas upgrades the request and runs the session until the client
// disconnects. The caller has already authenticated ownerID.
func (h *CanvasHandler) ServeCanvas(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	h.connected()
	defer h.disconnected()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writer := newConnWriter(conn, h.clock, h.dropped)
	ctrl := canvas.New(ctx, ownerID, h.store, h.clock, h.cfg, func(snap domain.NoteSnapshot) {
		writer.send(newStateEvent(snap))
	})

	if err := ctrl.Load(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to load canvas", "user_id", ownerID, "error", err)
		ctrl.Close()
		writer.stop("failed to load notes")
		return nil
	}
	writer.send(newNotesEvent(ctrl.Notes()))

	sess := newSession(ctx, ctrl, writer.send)
	h.readLoop(ctx, conn, writer, sess)

	ctrl.Close()
	cancel()
	sess.wait()
	writer.stop("bye")
	return nil
}

func (h *CanvasHandler) readLoop(ctx context.Context, conn *websocket.Conn, writer *connWriter, sess *session) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, context.Canceled) {
				slog.DebugContext(ctx, "canvas socket closed", "error", err)
			}
			return
		}
		writer.updateReadDeadline()

		var evt inboundEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			writer.send(errorEvent{Type: eventError, Message: "malformed event"})
			continue
		}
		h.received(evt.Type)
		sess.handle(evt)
	}
}

func (h *CanvasHandler) connected() {
	if h.socketMetrics != nil {
		h.socketMetrics.ActiveConnections.Inc()
	}
	if h.canvasMetrics != nil {
		h.canvasMetrics.ActiveSessions.Inc()
	}
}

func (h *CanvasHandler) disconnected() {
	if h.socketMetrics != nil {
		h.socketMetrics.ActiveConnections.Dec()
	}
	if h.canvasMetrics != nil {
		h.canvasMetrics.ActiveSessions.Dec()
	}
}

func (h *CanvasHandler) received(eventType string) {
	if h.socketMetrics == nil {
		return
	}
	switch eventType {
	case eventCreate, eventContent, eventDragStart, eventDragMove, eventDragEnd, eventSave, eventDelete:
	default:
		eventType = "unknown"
	}
	h.socketMetrics.MessagesReceived.WithLabelValues(eventType).Inc()
}

func (h *CanvasHandler) dropped() {
	if h.socketMetrics != nil {
		h.socketMetrics.MessagesDropped.Inc()
	}
}
