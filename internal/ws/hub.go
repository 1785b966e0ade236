package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/internal/chart"
	"github.com/launchdash/launchdash/internal/config"
	"github.com/launchdash/launchdash/internal/dash"
	"github.com/launchdash/launchdash/internal/metrics"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxMessageSize bounds a single client message.
	maxMessageSize = 4096
)

// Event names.
const (
	EventOutputs = "outputs"
	EventError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Request is one client message. An empty ID with State replaces the whole
// session state; otherwise Value is the new value of input ID.
type Request struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value,omitempty"`
	State *dash.State     `json:"state,omitempty"`
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event   string                  `json:"event"`
	Session string                  `json:"session"`
	Outputs map[string]chart.Figure `json:"outputs,omitempty"`
	SVG     map[string]string       `json:"svg,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// Hub manages callback sessions.
type Hub struct {
	app      *dash.App
	initial  dash.State
	settings func() config.UIConfig
	metrics  *metrics.Dashboard

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected session.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// New creates a Hub evaluating app's callbacks. Sessions start at initial;
// settings supplies the SVG canvas size. m may be nil.
func New(app *dash.App, initial dash.State, settings func() config.UIConfig, m *metrics.Dashboard) *Hub {
	return &Hub{
		app:      app,
		initial:  initial,
		settings: settings,
		metrics:  m,
		clients:  make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active sessions.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves one session.
// It sends every output immediately on connect. Blocks until the connection
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	slog.Info("ws: session opened", "session", c.id, "remote", r.RemoteAddr)

	st := h.initial
	c.enqueue(h.evaluate(c.id, "", func() (map[string]chart.Figure, error) {
		return h.app.Initial(st)
	}))

	go c.writePump()
	h.readPump(c, st) // blocks until connection closes

	slog.Info("ws: session closed", "session", c.id)
}

// Count returns the number of currently connected sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.Sessions.Inc()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		c.close()
		if h.metrics != nil {
			h.metrics.Sessions.Dec()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.close()
		if h.metrics != nil {
			h.metrics.Sessions.Dec()
		}
	}
}

// handle applies one request to st and returns the reply and the new state.
func (h *Hub) handle(c *client, st dash.State, raw []byte) ([]byte, dash.State) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return h.errorMessage(c.id, "malformed message: "+err.Error()), st
	}

	next := st
	var trigger func() (map[string]chart.Figure, error)
	if req.ID == "" {
		if req.State == nil {
			return h.errorMessage(c.id, "message needs an id or a state"), st
		}
		next = *req.State
		trigger = func() (map[string]chart.Figure, error) { return h.app.Initial(next) }
	} else {
		if err := next.Set(req.ID, req.Value); err != nil {
			return h.errorMessage(c.id, err.Error()), st
		}
		trigger = func() (map[string]chart.Figure, error) { return h.app.Trigger(req.ID, next) }
	}

	// A failed evaluation leaves the session on its last good state.
	var failed bool
	reply := h.evaluate(c.id, req.ID, func() (map[string]chart.Figure, error) {
		out, err := trigger()
		failed = err != nil
		return out, err
	})
	if failed {
		return reply, st
	}
	return reply, next
}

// evaluate runs fn and encodes its outputs, or the error, as a Message.
func (h *Hub) evaluate(session, changed string, fn func() (map[string]chart.Figure, error)) []byte {
	outputs, err := fn()
	if err != nil {
		slog.Warn("ws: callback failed", "session", session, "input", changed, "err", err)
		if h.metrics != nil {
			h.metrics.Callbacks.WithLabelValues(changedLabel(changed), "error").Inc()
		}
		return h.errorMessage(session, err.Error())
	}

	cfg := h.settings()
	svg := make(map[string]string, len(outputs))
	for id, fig := range outputs {
		if h.metrics != nil {
			h.metrics.Callbacks.WithLabelValues(id, "ok").Inc()
		}
		s, err := chart.RenderSVG(fig, cfg.ChartWidth, cfg.ChartHeight)
		if err != nil {
			slog.Warn("ws: render failed", "session", session, "output", id, "err", err)
			continue
		}
		svg[id] = s
	}

	return encode(Message{Event: EventOutputs, Session: session, Outputs: outputs, SVG: svg})
}

func (h *Hub) errorMessage(session, msg string) []byte {
	return encode(Message{Event: EventError, Session: session, Error: msg})
}

func encode(m Message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		// Figures hold only strings and finite numbers.
		slog.Error("ws: encode message failed", "event", m.Event, "err", err)
		data, _ = json.Marshal(Message{Event: EventError, Session: m.Session, Error: "internal error"})
	}
	return data
}

func changedLabel(changed string) string {
	if changed == "" {
		return "initial"
	}
	return changed
}

// enqueue queues data for the write pump. It reports false when the session
// is closed or its buffer is full.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				// Channel was closed (hub is shutting down or session removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client requests, applies them to the session state and
// queues the replies. Blocks until the connection closes.
func (h *Hub) readPump(c *client, st dash.State) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck

		var reply []byte
		reply, st = h.handle(c, st, raw)
		if !c.enqueue(reply) {
			slog.Warn("ws: send buffer full, dropping session", "session", c.id)
			return
		}
	}
}
