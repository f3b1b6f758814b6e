package rest

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type revisionFeed interface {
	Subscribe() (<-chan uint64, func())
	Revision() uint64
}

// RevisionEvent is pushed to clients whenever the catalog changes.
type RevisionEvent struct {
	Revision uint64 `json:"revision"`
}

// EventsHandler streams catalog revisions over WebSocket so clients know
// when to re-render.
type EventsHandler struct {
	feed     revisionFeed
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu     sync.Mutex
	closed bool
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewEventsHandler creates an EventsHandler. allowedOrigins is the CORS
// origin list; "*" accepts any origin.
func NewEventsHandler(feed revisionFeed, allowedOrigins string, logger *slog.Logger) *EventsHandler {
	origins := strings.Split(allowedOrigins, ",")
	return &EventsHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || isAllowed(origin, origins)
			},
		},
		log:  logger.With("handler", "events"),
		quit: make(chan struct{}),
	}
}

// Stream upgrades the connection and sends the current revision followed
// by every later one.
// GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade", slog.String("error", err.Error()))
		return
	}

	revs, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go readPump(conn, done)
	defer func() {
		conn.Close()
		<-done
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if !h.send(conn, h.feed.Revision()) {
		return
	}
	for {
		select {
		case <-h.quit:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			conn.WriteMessage(websocket.CloseMessage, //nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-done:
			return
		case rev, ok := <-revs:
			if !ok || !h.send(conn, rev) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every stream and waits for them to finish.
func (h *EventsHandler) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.quit)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *EventsHandler) send(conn *websocket.Conn, rev uint64) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	if err := conn.WriteJSON(RevisionEvent{Revision: rev}); err != nil {
		h.log.Debug("websocket write", slog.String("error", err.Error()))
		return false
	}
	return true
}

// readPump discards client messages and keeps the read deadline fresh on
// pongs. done is closed when the connection fails or is closed.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func isAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
